package httpapi

import (
	"net/http"
	"strings"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/usecase"
)

func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBoards")
	defer span.End()

	metas, err := h.boardService.ListBoards(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list boards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, metas)
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBoard")
	defer span.End()

	var req createBoardRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.CreateBoard(ctx, identityFromContext(ctx), usecase.CreateBoardInput{
		ID:             req.ID,
		Name:           req.Name,
		GameID:         req.GameID,
		Sport:          board.Sport(req.Sport),
		PricePerSquare: req.PricePerSquare,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create board failed", "board_id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, state.Meta())
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	view, err := h.viewService.BoardView(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "get board failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) ClaimSquare(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClaimSquare")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req claimSquareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.ClaimSquare(ctx, identityFromContext(ctx), boardID, req.Row, req.Col, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "claim square failed",
			"board_id", boardID,
			"row", req.Row,
			"col", req.Col,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) UnclaimSquare(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnclaimSquare")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req squarePositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.UnclaimSquare(ctx, identityFromContext(ctx), boardID, req.Row, req.Col)
	if err != nil {
		h.logger.WarnContext(ctx, "unclaim square failed",
			"board_id", boardID,
			"row", req.Row,
			"col", req.Col,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) SetSquarePaid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSquarePaid")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req setPaidRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.SetSquarePaid(ctx, identityFromContext(ctx), boardID, req.Row, req.Col, req.Paid)
	if err != nil {
		h.logger.WarnContext(ctx, "set square paid failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) SetSquareOwner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSquareOwner")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req setOwnerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.SetSquareOwner(ctx, identityFromContext(ctx), boardID, req.Row, req.Col, req.Owner)
	if err != nil {
		h.logger.WarnContext(ctx, "set square owner failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) SetSquareDisplayName(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSquareDisplayName")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req setDisplayNameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.SetSquareDisplayName(ctx, identityFromContext(ctx), boardID, req.Row, req.Col, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "set square display name failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) ClearSquare(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearSquare")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))

	var req squarePositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.boardService.ClearSquare(ctx, identityFromContext(ctx), boardID, req.Row, req.Col)
	if err != nil {
		h.logger.WarnContext(ctx, "clear square failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) RandomizeNumbers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RandomizeNumbers")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	state, err := h.boardService.RandomizeNumbers(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "randomize numbers failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateShareLink")
	defer span.End()

	boardID := strings.TrimSpace(r.PathValue("boardID"))
	token, err := h.boardService.CreateShareLink(ctx, identityFromContext(ctx), boardID)
	if err != nil {
		h.logger.WarnContext(ctx, "create share link failed", "board_id", boardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, shareLinkResponse{
		BoardID: boardID,
		Token:   token,
	})
}
