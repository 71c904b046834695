package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gridironlabs/squares/internal/usecase"
)

func (h *Handler) GetMySquares(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMySquares")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	view, err := h.viewService.MySquares(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my squares failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserStats")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	stats, err := h.viewService.UserStats(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user stats failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) GetScenarios(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScenarios")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	scenarios, err := h.viewService.Scenarios(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "get scenarios failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scenarios)
}

// GetGame exposes the raw score snapshot for a board so clients can render
// the scoreboard strip without a full board view.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	state, err := h.boardService.GetBoard(ctx, boardID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	info, err := h.scoreService.GameForBoard(ctx, state)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if info == nil {
		writeError(ctx, w, fmt.Errorf("%w: board has no game on the scoreboard", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, info)
}
