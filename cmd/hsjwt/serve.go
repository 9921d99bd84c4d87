package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	hsjwt "github.com/bionicotaku/lingo-utils-hsjwt"
	"github.com/bionicotaku/lingo-utils-hsjwt/middleware"
)

const maxClaimsBody = 64 << 10

func runServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf configFlags
	cf.register(fs)
	addr := fs.String("addr", ":8080", "Listen address")
	debug := fs.Bool("debug", false, "Development logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(*debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(hsjwt.NewBuilder(cfg), hsjwt.NewVerifier(cfg), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr), zap.String("alg", cfg.Alg))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type tokenResponse struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg,omitempty"`
	Token string `json:"token,omitempty"`
}

func newRouter(b *hsjwt.Builder, v *hsjwt.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/token", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxClaimsBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, tokenResponse{Msg: "read body failed"})
			return
		}
		claims := hsjwt.NewClaims()
		if err := claims.UnmarshalJSON(body); err != nil {
			writeJSON(w, http.StatusBadRequest, tokenResponse{Msg: "claims must be a JSON object"})
			return
		}
		token, err := b.Build(claims)
		if err != nil {
			logger.Warn("issue token failed",
				zap.String("code", string(hsjwt.CodeOf(err))),
				zap.Error(err))
			writeJSON(w, http.StatusOK, tokenResponse{Msg: hsjwt.PublicMessage(err)})
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{Code: 1, Token: token})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWT(v, middleware.WithLogger(logger)))
		pr.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			claims, _ := middleware.Claims(r)
			writeJSON(w, http.StatusOK, map[string]any{"code": 1, "claims": claims})
		})
	})

	// /auth never rejects; failures come back as the _error_msg claim.
	r.Get("/auth", func(w http.ResponseWriter, r *http.Request) {
		res := v.Auth(r.Header.Get("Authorization"))
		code := 0
		if res.OK() {
			code = 1
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": code, "claims": res.Claims()})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
