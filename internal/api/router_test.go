package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/pulsechat/internal/api/handler"
	"github.com/d60-Lab/pulsechat/internal/chain"
	"github.com/d60-Lab/pulsechat/internal/kv"
	"github.com/d60-Lab/pulsechat/internal/ledger"
	"github.com/d60-Lab/pulsechat/internal/model"
	"github.com/d60-Lab/pulsechat/internal/repository"
	"github.com/d60-Lab/pulsechat/internal/service"
)

type testApp struct {
	router  http.Handler
	backend *chain.MemoryBackend
	led     *ledger.Ledger
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Post{}, &model.Outbox{}, &model.Inbox{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	led := ledger.New(kv.NewMemoryStore())
	backend := chain.NewMemory()
	postRepo := repository.NewPostRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	indexer := service.NewIndexer(backend, db, postRepo, 50, time.Second)
	refresher := service.NewRefresher(backend, indexer, time.Millisecond, 16)

	authSvc := service.NewAuthService(rdb, "test-secret", time.Hour, time.Minute)
	engagementSvc := service.NewEngagementService(led, postRepo)
	postSvc := service.NewPostService(backend, led, postRepo, refresher)
	profileSvc := service.NewProfileService(backend, rdb, led, time.Minute)
	timelineSvc := service.NewTimelineService(postRepo, inboxRepo, backend, led, profileSvc)

	h := handler.New(authSvc, engagementSvc, postSvc, timelineSvc, profileSvc)
	return &testApp{
		router:  NewRouter("test", h, authSvc),
		backend: backend,
		led:     led,
	}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func envelopeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, 0, env.Code)
	return env.Data
}

// login 走完整的 nonce -> personal_sign -> JWT 流程
func (a *testApp) login(t *testing.T) (address, token string) {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	address = crypto.PubkeyToAddress(priv.PublicKey).Hex()

	w := a.do(t, http.MethodPost, "/api/v1/auth/nonce", "", map[string]string{"address": address})
	require.Equal(t, http.StatusOK, w.Code)
	message := envelopeData(t, w)["message"].(string)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), priv)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"address": address, "signature": hexutil.Encode(sig),
	})
	require.Equal(t, http.StatusOK, w.Code)
	token = envelopeData(t, w)["token"].(string)
	return address, token
}

func TestAuthFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)

	// 未登录不能进写接口
	w := app.do(t, http.MethodGet, "/api/v1/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := app.login(t)
	w = app.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLikeToggleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	_, token := app.login(t)

	p := app.backend.AddPost("0x"+fmt.Sprintf("%040x", 7), "gm world")

	w := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/engagement/likes/%d", p.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := envelopeData(t, w)
	require.Equal(t, true, data["active"])
	require.Equal(t, float64(1), data["count"])

	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/engagement/likes/%d", p.ID), token, nil)
	data = envelopeData(t, w)
	require.Equal(t, false, data["active"])
	require.Equal(t, float64(0), data["count"])
}

func TestPrepareTxOverHTTP(t *testing.T) {
	app := newTestApp(t)
	address, token := app.login(t)

	// 没钱先被预检拦下
	w := app.do(t, http.MethodPost, "/api/v1/tx/post", token, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	app.backend.SetBalance(address, big1e6())
	app.backend.SetAllowance(address, big1e6())
	w = app.do(t, http.MethodPost, "/api/v1/tx/post", token, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	tx := envelopeData(t, w)["tx"].(map[string]interface{})
	require.NotEmpty(t, tx["data"])

	w = app.do(t, http.MethodPost, "/api/v1/tx/confirm", token, map[string]string{"txHash": "0xabc"})
	require.Equal(t, http.StatusOK, w.Code)
}

func big1e6() *big.Int { return big.NewInt(1_000_000) }

func TestPublicReadsAnonymous(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddPost("0x"+fmt.Sprintf("%040x", 7), "public post")

	w := app.do(t, http.MethodGet, "/api/v1/stats/totals", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
