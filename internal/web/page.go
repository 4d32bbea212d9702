package web

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/premiscsv2xml/internal/core"
)

// uploadPage renders the form that posts both tables to /api/convert.
func uploadPage() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PREMIS CSV to XML</title>
</head>
<body>
<h1>PREMIS CSV to XML</h1>
<p>Namespace: <code>`+templ.EscapeString(core.PremisNamespace)+`</code></p>
<form method="post" action="/api/convert" enctype="multipart/form-data">
<p><label>Objects CSV <input type="file" name="objects" accept=".csv" required></label></p>
<p><label>Events CSV <input type="file" name="events" accept=".csv" required></label></p>
<p><label>Your name <input type="text" name="user" required></label></p>
<p><button type="submit">Convert</button></p>
</form>
</body>
</html>
`)
		return err
	})
}
