package handler

import "html/template"

type headData struct {
	Image string
}

type navigateData struct {
	Destination string
}

type statusData struct {
	Title   string
	Message string
}

const pageStyle = `body{margin:0;min-height:100vh;display:flex;align-items:center;justify-content:center;background:#fff;font-family:system-ui,sans-serif}` +
	`img{width:100%;max-width:800px;height:auto;aspect-ratio:4/3;object-fit:contain}`

// pageHead is flushed before the redirect delay starts, so the image is
// already loading while the navigation is pending.
var pageHead = template.Must(template.New("head").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Redirecting</title>
<style>` + pageStyle + `</style>
</head>
<body>
<main><img src="{{.Image}}" alt="Loading" width="800" height="600"></main>
`))

var pageNavigate = template.Must(template.New("navigate").Parse(`<script>window.location.replace({{.Destination}});</script>
<noscript><p><a href="{{.Destination}}">Continue</a></p></noscript>
</body>
</html>
`))

var pageStatus = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<main><h1>{{.Title}}</h1><p>{{.Message}}</p></main>
</body>
</html>
`))
