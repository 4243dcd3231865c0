package dynamic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformSimpleElement(t *testing.T) {
	out, err := Transform(`<Box pad="2">hi</Box>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Box", {pad: "2"}, "hi")`, out)
}

func TestTransformNested(t *testing.T) {
	out, err := Transform(`<Box><Title>T</Title></Box>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Box", {}, h("Title", {}, "T"))`, out)
}

func TestTransformSelfClosing(t *testing.T) {
	out, err := Transform(`<Divider/>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Divider", {})`, out)
}

func TestTransformBracedChild(t *testing.T) {
	out, err := Transform(`<Box>{title}</Box>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Box", {}, (title))`, out)
}

func TestTransformBracedProp(t *testing.T) {
	out, err := Transform(`<Box pad={n + 1}>x</Box>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Box", {pad: (n + 1)}, "x")`, out)
}

func TestTransformFlagProp(t *testing.T) {
	out, err := Transform(`<Box wide>x</Box>`)
	require.NoError(t, err)
	assert.Equal(t, `h("Box", {wide: true}, "x")`, out)
}

func TestTransformMarkupInsideExpression(t *testing.T) {
	out, err := Transform(`<List>{items.map(function(i) { return <Item>{i}</Item>; })}</List>`)
	require.NoError(t, err)
	assert.Contains(t, out, `h("List", {}`)
	assert.Contains(t, out, `h("Item", {}, (i))`)
}

func TestTransformLeavesPlainCodeAlone(t *testing.T) {
	src := "var a = 1 < 2;\nfunction f(x) { return x * 3; }"
	out, err := Transform(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestTransformSkipsStringsAndComments(t *testing.T) {
	src := "var s = \"<Box>not markup</Box>\"; // <Title>nor this</Title>"
	out, err := Transform(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestTransformErrors(t *testing.T) {
	cases := []string{
		`<Box>`,             // missing close tag
		`<Box></Row>`,       // mismatched close tag
		`<Box attr=>x</Box>`, // malformed attribute
	}
	for _, src := range cases {
		_, err := Transform(src)
		assert.Error(t, err, "input %q", src)
	}
}
