package docs

// pageTemplate is the html/template for each documentation page.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Page.Title}} · ProofChain Docs</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; display: flex; color: #1f2328; }
    nav { width: 240px; padding: 24px; border-right: 1px solid #d0d7de; min-height: 100vh; }
    nav a { display: block; padding: 6px 0; color: #0969da; text-decoration: none; }
    nav a.active { font-weight: 600; }
    main { flex: 1; max-width: 860px; padding: 24px 48px; }
    pre { padding: 12px; overflow-x: auto; border-radius: 6px; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #d0d7de; padding: 6px 12px; }
  </style>
</head>
<body>
  <nav>
    <h2>ProofChain</h2>
    {{range .Pages}}<a href="/docs/{{.Slug}}"{{if eq .Slug $.Page.Slug}} class="active"{{end}}>{{.Title}}</a>
    {{end}}
  </nav>
  <main>
    {{.Page.HTML}}
  </main>
</body>
</html>
`
