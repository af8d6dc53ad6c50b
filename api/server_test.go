package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centaurbot/centaur/api"
	"github.com/centaurbot/centaur/chess"
	"github.com/centaurbot/centaur/entropy"
	"github.com/centaurbot/centaur/network"
	"github.com/centaurbot/centaur/oneply"
	"github.com/centaurbot/centaur/testcommon"
	"github.com/centaurbot/centaur/weights"
)

func wirePosition(b chess.BoardState) api.Position {
	var p api.Position
	for side := 0; side < 2; side++ {
		for piece := 0; piece < 6; piece++ {
			p.Bitboards[side*6+piece] = strconv.FormatUint(b.Pieces[side][piece], 16)
		}
	}
	p.Side = b.SideToMove.String()
	p.Castling = b.Castling
	p.EPFile = b.EPFile
	return p
}

func wireMask(moves ...chess.MoveIndex) string {
	var m chess.LegalityMask
	for _, mv := range moves {
		m.Set(mv)
	}
	return base64.StdEncoding.EncodeToString(m[:])
}

func newTestServer(t *testing.T, logits map[chess.MoveIndex]int32) *api.Server {
	t.Helper()
	reg, net, err := testcommon.ReadyNetwork(1, logits)
	require.NoError(t, err)
	advisor := oneply.NewAdvisor(net, entropy.NewFixed([]byte{7}))
	return api.NewServer(reg, net, advisor, nil)
}

func do(t *testing.T, s *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, uint32(1), resp.Version)
}

func TestHealthzNotReady(t *testing.T) {
	reg := weights.NewRegistry(weights.NewMemStore())
	net := network.New(reg)
	s := api.NewServer(reg, net, oneply.NewAdvisor(net, entropy.NewFixed(nil)), nil)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)

	// Inference refuses until a pack is installed.
	body := api.BestRequest{
		Position: wirePosition(testcommon.StartingPosition()),
		Mask:     wireMask(100),
	}
	rec = do(t, s, http.MethodPost, "/api/v1/best", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBestEndpoint(t *testing.T) {
	s := newTestServer(t, map[chess.MoveIndex]int32{100: 40, 2000: 75})
	body := api.BestRequest{
		Position: wirePosition(testcommon.StartingPosition()),
		Mask:     wireMask(100, 2000),
	}
	rec := do(t, s, http.MethodPost, "/api/v1/best", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.BestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint16(2000), resp.Move)
	assert.Equal(t, int32(75), resp.Logit)
}

func TestBestEndpointValidation(t *testing.T) {
	s := newTestServer(t, nil)

	body := api.BestRequest{
		Position: wirePosition(testcommon.StartingPosition()),
		Mask:     base64.StdEncoding.EncodeToString(make([]byte, 10)),
	}
	rec := do(t, s, http.MethodPost, "/api/v1/best", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := wirePosition(testcommon.StartingPosition())
	bad.Side = "green"
	rec = do(t, s, http.MethodPost, "/api/v1/best", api.BestRequest{
		Position: bad, Mask: wireMask(100),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = wirePosition(testcommon.StartingPosition())
	bad.Bitboards[3] = "not-hex"
	rec = do(t, s, http.MethodPost, "/api/v1/best", api.BestRequest{
		Position: bad, Mask: wireMask(100),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopKEndpointDropsSentinels(t *testing.T) {
	s := newTestServer(t, map[chess.MoveIndex]int32{7: 12})
	body := api.TopKRequest{
		Position: wirePosition(testcommon.StartingPosition()),
		Mask:     wireMask(7),
		K:        4,
	}
	rec := do(t, s, http.MethodPost, "/api/v1/topk", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.TopKResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Moves, 1)
	assert.Equal(t, uint16(7), resp.Moves[0].Move)

	body.K = 0
	rec = do(t, s, http.MethodPost, "/api/v1/topk", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func adviseBody(moves []chess.MoveIndex, logits []int32, reply chess.MoveIndex) api.AdviseRequest {
	root := testcommon.StartingPosition()
	req := api.AdviseRequest{
		Position: wirePosition(root),
		Mask:     wireMask(moves...),
	}
	var succ chess.BoardState
	succ.SideToMove = chess.Black
	succ.EPFile = -1
	for i, m := range moves {
		req.Moves = append(req.Moves, uint16(m))
		req.Logits = append(req.Logits, logits[i])
		req.Successors = append(req.Successors, wirePosition(succ))
		req.SuccessorMasks = append(req.SuccessorMasks, wireMask(reply))
	}
	return req
}

func TestAdviseEndpoint(t *testing.T) {
	s := newTestServer(t, map[chess.MoveIndex]int32{40: -1})
	req := adviseBody([]chess.MoveIndex{100, 200}, []int32{500, 480}, 40)

	rec := do(t, s, http.MethodPost, "/api/v1/advise", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.AdviseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint16(100), resp.Move)
	assert.Equal(t, int32(500), resp.Score)
	assert.Equal(t, 1, resp.PoolSize)
}

func TestAdviseEndpointParallelArrayValidation(t *testing.T) {
	s := newTestServer(t, map[chess.MoveIndex]int32{40: -1})
	req := adviseBody([]chess.MoveIndex{100, 200}, []int32{500, 480}, 40)
	req.Logits = req.Logits[:1]

	rec := do(t, s, http.MethodPost, "/api/v1/advise", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "parallel")

	// A candidate outside the root mask is rejected before any work.
	req = adviseBody([]chess.MoveIndex{100}, []int32{500}, 40)
	req.Moves[0] = 101
	rec = do(t, s, http.MethodPost, "/api/v1/advise", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdviseBatchEndpoint(t *testing.T) {
	s := newTestServer(t, map[chess.MoveIndex]int32{40: -1})
	batch := api.AdviseBatchRequest{Queries: []api.AdviseRequest{
		adviseBody([]chess.MoveIndex{100, 200}, []int32{500, 480}, 40),
		adviseBody([]chess.MoveIndex{300}, []int32{-20}, 40),
	}}

	rec := do(t, s, http.MethodPost, "/api/v1/advise-batch", batch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.AdviseBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 2)
	assert.Equal(t, uint16(100), resp.Decisions[0].Move)
	assert.Equal(t, uint16(300), resp.Decisions[1].Move)

	rec = do(t, s, http.MethodPost, "/api/v1/advise-batch", api.AdviseBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
