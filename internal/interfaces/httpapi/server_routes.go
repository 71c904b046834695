package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerBoardRoutes(mux *http.ServeMux, handler *Handler, verifier SessionVerifier, shares ShareResolver) {
	identified := func(h http.HandlerFunc) http.Handler {
		return ResolveIdentity(verifier, shares, h)
	}

	mux.Handle("GET /v1/boards", identified(handler.ListBoards))
	mux.Handle("POST /v1/boards", identified(handler.CreateBoard))
	mux.Handle("GET /v1/boards/{boardID}", identified(handler.GetBoard))
	mux.Handle("GET /v1/boards/{boardID}/game", identified(handler.GetGame))
	mux.Handle("GET /v1/boards/{boardID}/my-squares", identified(handler.GetMySquares))
	mux.Handle("GET /v1/boards/{boardID}/stats", identified(handler.GetUserStats))
	mux.Handle("GET /v1/boards/{boardID}/scenarios", identified(handler.GetScenarios))

	mux.Handle("POST /v1/boards/{boardID}/squares/claim", identified(handler.ClaimSquare))
	mux.Handle("POST /v1/boards/{boardID}/squares/unclaim", identified(handler.UnclaimSquare))
	mux.Handle("POST /v1/boards/{boardID}/squares/paid", identified(handler.SetSquarePaid))
	mux.Handle("POST /v1/boards/{boardID}/squares/owner", identified(handler.SetSquareOwner))
	mux.Handle("POST /v1/boards/{boardID}/squares/display-name", identified(handler.SetSquareDisplayName))
	mux.Handle("POST /v1/boards/{boardID}/squares/clear", identified(handler.ClearSquare))
	mux.Handle("POST /v1/boards/{boardID}/randomize", identified(handler.RandomizeNumbers))
	mux.Handle("POST /v1/boards/{boardID}/share-links", identified(handler.CreateShareLink))
}
