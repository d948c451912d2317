package artifact

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/KaramelBytes/churnscope/internal/charts"
	"github.com/KaramelBytes/churnscope/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func figure(t *testing.T) *charts.Figure {
	t.Helper()
	ds, err := dataset.LoadBytes("d.csv", []byte("a,b\n1,x\n,y\n3,\n"), dataset.DefaultOptions())
	require.NoError(t, err)
	st := charts.DefaultStyle()
	st.WidthIn, st.PanelHeightIn, st.DPI = 4, 2, 20
	fig, err := charts.Missingness(ds, st)
	require.NoError(t, err)
	return fig
}

func TestEncodeDeterministic(t *testing.T) {
	fig := figure(t)
	defer fig.Close()

	a, err := Encode(fig)
	require.NoError(t, err)
	b, err := Encode(fig)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, charts.NameMissing, a.Name)
	assert.Equal(t, "image/png", a.MediaType)
	assert.Equal(t, "base64", a.Encoding)
	assert.Equal(t, []string{"a", "b"}, a.Panels)

	raw, err := a.Decode()
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.DataURI(), "data:image/png;base64,iVBOR"))
}

func TestEncodeClosedFigure(t *testing.T) {
	fig := figure(t)
	require.NoError(t, fig.Close())
	_, err := Encode(fig)
	var ee *EncodeError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, charts.NameMissing, ee.Artifact)
	assert.ErrorIs(t, err, charts.ErrClosed)

	_, err = Encode(nil)
	require.True(t, errors.As(err, &ee))
}
