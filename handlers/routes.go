package handlers

import (
	"io/fs"
	"net/http"

	"snake-landing/auth"
	"snake-landing/game"
	webrtcManager "snake-landing/webrtc"
)

// NewRouter wires every HTTP endpoint. static holds the landing page.
func NewRouter(gm *game.Manager, wm *webrtcManager.Manager, issuer *auth.Issuer, static fs.FS) http.Handler {
	api := NewAPIHandler(gm)
	ws := NewWebSocketHandler(gm, issuer)
	rtc := NewWebRTCHandler(gm, wm, issuer)

	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServer(http.FS(static)))
	mux.Handle("GET /ws", ws)
	mux.HandleFunc("POST /webrtc/offer", rtc.HandleOffer)
	mux.HandleFunc("OPTIONS /webrtc/offer", rtc.HandleOffer)
	mux.HandleFunc("GET /api/config", api.HandleConfig)
	mux.Handle("GET /api/state", auth.Middleware(issuer, gm)(http.HandlerFunc(api.HandleState)))
	mux.HandleFunc("GET /healthz", api.HandleHealth)
	return mux
}
