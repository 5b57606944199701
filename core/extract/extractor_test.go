package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title> Release Notes </title><script>x()</script></head>
<body><nav>menu</nav><header>top</header>
<main><h1>Notes</h1><p>Body text.</p><img src="images/a.png"><table><tr><td>1</td></tr></table>
<form><input></form></main>
<footer>bye</footer></body></html>`

func TestExtract(t *testing.T) {
	out, err := New().Extract(page)
	require.NoError(t, err)

	assert.Contains(t, out, "<main>")
	assert.Contains(t, out, "Body text.")
	assert.Contains(t, out, `<img src="images/a.png"/>`)
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "menu")
	assert.NotContains(t, out, "bye")
	assert.NotContains(t, out, "<form>")
}

func TestExtractFallsBackToBody(t *testing.T) {
	out, err := New().Extract(`<p>Only a paragraph.</p>`)
	require.NoError(t, err)
	assert.Contains(t, out, "<body>")
	assert.Contains(t, out, "Only a paragraph.")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Release Notes", Title(page))
	assert.Equal(t, "Heading", Title(`<h1> Heading </h1>`))
	assert.Empty(t, Title(`<p>none</p>`))
}
