package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/domain/game"
	"github.com/gridironlabs/squares/internal/domain/identity"
	"github.com/gridironlabs/squares/internal/infrastructure/repository/memory"
	"github.com/gridironlabs/squares/internal/platform/logging"
	"github.com/gridironlabs/squares/internal/usecase"
)

type tokenVerifier struct {
	sessions map[string]identity.Identity
}

func (v tokenVerifier) VerifySession(_ context.Context, token string) (identity.Identity, error) {
	actor, ok := v.sessions[token]
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: unknown session token", usecase.ErrUnauthorized)
	}
	return actor, nil
}

type emptyFeed struct{}

func (emptyFeed) Scoreboard(context.Context, board.Sport) ([]game.Info, error) {
	return nil, nil
}

func (emptyFeed) GameByID(_ context.Context, gameID string, _ board.Sport) (game.Info, error) {
	return game.Info{}, fmt.Errorf("game=%s: not found", gameID)
}

func (emptyFeed) FindGame(_ context.Context, _ board.Sport, team1, team2 string) (game.Info, error) {
	return game.Info{}, fmt.Errorf("pairing %s-%s: not found", team1, team2)
}

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("token-%d", g.next), nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	repo := memory.NewBoardRepository()
	boards := usecase.NewBoardService(repo, &sequenceIDGenerator{}, logger)
	scores := usecase.NewScoreService(emptyFeed{}, repo, nil, logger)
	views := usecase.NewViewService(boards, scores, logger)

	handler := NewHandler(boards, views, scores, logger)
	verifier := tokenVerifier{sessions: map[string]identity.Identity{
		"admin-token":  identity.Regular("dan", true),
		"member-token": identity.Regular("alice", false),
	}}
	return NewRouter(handler, verifier, boards, logger, nil)
}

type testEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       json.RawMessage  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var envelope testEnvelope
	if err := sonic.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return recorder, envelope
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/healthz", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if envelope.APIVersion != "2.0" {
		t.Fatalf("apiVersion = %q", envelope.APIVersion)
	}
}

func TestCreateBoard_Authorization(t *testing.T) {
	router := newTestRouter(t)
	body := `{"id":"superbowl","name":"Super Bowl LX","sport":"nfl","pricePerSquare":10}`

	recorder, _ := doRequest(t, router, http.MethodPost, "/v1/boards", body, nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", recorder.Code)
	}

	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/boards", body, bearer("member-token"))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("member: status = %d, want 403", recorder.Code)
	}

	recorder, envelope := doRequest(t, router, http.MethodPost, "/v1/boards", body, bearer("admin-token"))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("admin: status = %d, want 201 (%s)", recorder.Code, recorder.Body.String())
	}

	var meta board.BoardMeta
	if err := sonic.Unmarshal(envelope.Data, &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.ID != "superbowl" || meta.Name != "Super Bowl LX" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestCreateBoard_Validation(t *testing.T) {
	router := newTestRouter(t)

	cases := map[string]string{
		"missing_name":  `{"id":"b"}`,
		"bad_sport":     `{"id":"b","name":"B","sport":"nhl"}`,
		"unknown_field": `{"id":"b","name":"B","bogus":true}`,
		"invalid_json":  `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			recorder, _ := doRequest(t, router, http.MethodPost, "/v1/boards", body, bearer("admin-token"))
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestInvalidBearerToken(t *testing.T) {
	router := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/v1/boards", "", bearer("bogus"))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
	if envelope.Error == nil || envelope.Error.Status != "UNAUTHENTICATED" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestClaimSquareFlow(t *testing.T) {
	router := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/claim",
		`{"row":2,"col":3}`, bearer("member-token"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("claim: status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var state board.BoardState
	if err := sonic.Unmarshal(envelope.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Squares[2][3].ClaimedBy != "alice" {
		t.Fatalf("unexpected square: %+v", state.Squares[2][3])
	}

	// Second claim on the same cell conflicts.
	recorder, envelope = doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/claim",
		`{"row":2,"col":3}`, bearer("admin-token"))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate claim: status = %d, want 409", recorder.Code)
	}
	if envelope.Error == nil || envelope.Error.Status != "ALREADY_EXISTS" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}

	// Out-of-range coordinates are rejected before the service runs.
	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/claim",
		`{"row":11,"col":0}`, bearer("member-token"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("out of range: status = %d, want 400", recorder.Code)
	}
}

func TestShareLinkFlow(t *testing.T) {
	router := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/share-links", "", bearer("admin-token"))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create share link: status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var link shareLinkResponse
	if err := sonic.Unmarshal(envelope.Data, &link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	if link.BoardID != "superbowl" || link.Token == "" {
		t.Fatalf("unexpected link: %+v", link)
	}

	shareHeaders := map[string]string{
		shareTokenHeader:  link.Token,
		displayNameHeader: "Uncle Rico",
	}

	// The share identity can claim on its board.
	recorder, envelope = doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/claim",
		`{"row":0,"col":0}`, shareHeaders)
	if recorder.Code != http.StatusOK {
		t.Fatalf("share claim: status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var state board.BoardState
	if err := sonic.Unmarshal(envelope.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Squares[0][0].ClaimedBy != "Uncle Rico" {
		t.Fatalf("unexpected square: %+v", state.Squares[0][0])
	}

	// But never unclaim, even its own square.
	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/unclaim",
		`{"row":0,"col":0}`, shareHeaders)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("share unclaim: status = %d, want 403", recorder.Code)
	}

	// And the token does not open other boards.
	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/boards/other-board/squares/claim",
		`{"row":0,"col":0}`, shareHeaders)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("share on other board: status = %d, want 401", recorder.Code)
	}

	// A share token without a display name cannot act.
	recorder, _ = doRequest(t, router, http.MethodPost, "/v1/boards/superbowl/squares/claim",
		`{"row":1,"col":0}`, map[string]string{shareTokenHeader: link.Token})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("share without name: status = %d, want 400", recorder.Code)
	}
}

func TestGetBoard_MasksNumbersForAnonymous(t *testing.T) {
	router := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/v1/boards/superbowl", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get board: status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var view struct {
		Board board.BoardState `json:"board"`
	}
	if err := sonic.Unmarshal(envelope.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Board.RowNumbers != nil || view.Board.ColNumbers != nil {
		t.Fatal("digit assignments must be hidden on an unlocked board")
	}
}

func TestAdminMutationRoutes(t *testing.T) {
	router := newTestRouter(t)

	if recorder, _ := doRequest(t, router, http.MethodPost, "/v1/boards/b/squares/claim",
		`{"row":4,"col":4}`, bearer("member-token")); recorder.Code != http.StatusOK {
		t.Fatalf("seed claim failed: %d", recorder.Code)
	}

	adminCalls := []struct {
		path string
		body string
	}{
		{"/v1/boards/b/squares/paid", `{"row":4,"col":4,"paid":true}`},
		{"/v1/boards/b/squares/owner", `{"row":4,"col":4,"owner":"Alice Smith"}`},
		{"/v1/boards/b/squares/display-name", `{"row":4,"col":4,"displayName":"Big Al"}`},
		{"/v1/boards/b/randomize", ""},
		{"/v1/boards/b/squares/clear", `{"row":4,"col":4}`},
	}

	for _, call := range adminCalls {
		if recorder, _ := doRequest(t, router, http.MethodPost, call.path, call.body, bearer("member-token")); recorder.Code != http.StatusForbidden {
			t.Fatalf("%s as member: status = %d, want 403", call.path, recorder.Code)
		}
		if recorder, _ := doRequest(t, router, http.MethodPost, call.path, call.body, bearer("admin-token")); recorder.Code != http.StatusOK {
			t.Fatalf("%s as admin: status = %d (%s)", call.path, recorder.Code, recorder.Body.String())
		}
	}
}

func TestMySquaresRoute(t *testing.T) {
	router := newTestRouter(t)

	if recorder, _ := doRequest(t, router, http.MethodPost, "/v1/boards/b/squares/claim",
		`{"row":1,"col":1}`, bearer("member-token")); recorder.Code != http.StatusOK {
		t.Fatalf("seed claim failed: %d", recorder.Code)
	}

	recorder, envelope := doRequest(t, router, http.MethodGet, "/v1/boards/b/my-squares", "", bearer("member-token"))
	if recorder.Code != http.StatusOK {
		t.Fatalf("my squares: status = %d (%s)", recorder.Code, recorder.Body.String())
	}

	var view usecase.MySquaresView
	if err := sonic.Unmarshal(envelope.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Squares) != 1 || view.Summary.UnpaidCount != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}

	if recorder, _ := doRequest(t, router, http.MethodGet, "/v1/boards/b/my-squares", "", nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous my-squares: status = %d, want 401", recorder.Code)
	}
}

func TestUserStatsRoute_AdminOnly(t *testing.T) {
	router := newTestRouter(t)

	if recorder, _ := doRequest(t, router, http.MethodGet, "/v1/boards/b/stats", "", bearer("member-token")); recorder.Code != http.StatusForbidden {
		t.Fatalf("member stats: status = %d, want 403", recorder.Code)
	}
	if recorder, _ := doRequest(t, router, http.MethodGet, "/v1/boards/b/stats", "", bearer("admin-token")); recorder.Code != http.StatusOK {
		t.Fatalf("admin stats: status = %d", recorder.Code)
	}
}

func TestGameRoute_NotFoundWithoutGame(t *testing.T) {
	router := newTestRouter(t)

	recorder, _ := doRequest(t, router, http.MethodGet, "/v1/boards/b/game", "", bearer("member-token"))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	logger := logging.NewNop()
	repo := memory.NewBoardRepository()
	boards := usecase.NewBoardService(repo, &sequenceIDGenerator{}, logger)
	scores := usecase.NewScoreService(emptyFeed{}, repo, nil, logger)
	views := usecase.NewViewService(boards, scores, logger)
	handler := NewHandler(boards, views, scores, logger)
	router := NewRouter(handler, tokenVerifier{}, boards, logger, []string{"https://squares.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/boards", nil)
	req.Header.Set("Origin", "https://squares.example.com")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://squares.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}
	if allow := recorder.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(allow, shareTokenHeader) {
		t.Fatalf("share header missing from allow-headers: %q", allow)
	}

	// Unknown origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q for unknown origin", got)
	}
}
