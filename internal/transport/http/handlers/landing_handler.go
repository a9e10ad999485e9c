package handlers

import "net/http"

const landingPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>AsciiMaster Bot</title>
</head>
<body>
  <h1>AsciiMaster</h1>
  <p>Telegram bot that turns text and photos into ASCII art.</p>
  <p>Send text for a banner, send a photo for character art, or use inline mode.</p>
</body>
</html>
`

type LandingHandler struct{}

func NewLandingHandler() *LandingHandler {
	return &LandingHandler{}
}

func (h *LandingHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(landingPage))
}
