// Package api exposes the inference and one-ply advise entry points as
// a JSON HTTP service.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/centaurbot/centaur/decisionlog"
	"github.com/centaurbot/centaur/network"
	"github.com/centaurbot/centaur/oneply"
	"github.com/centaurbot/centaur/weights"
)

type Server struct {
	echo    *echo.Echo
	net     *network.Network
	advisor *oneply.Advisor
	reg     *weights.Registry
	dlog    *decisionlog.Logger
}

// NewServer wires the handlers. dlog may be nil to disable the audit
// log.
func NewServer(reg *weights.Registry, net *network.Network, advisor *oneply.Advisor,
	dlog *decisionlog.Logger) *Server {

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, net: net, advisor: advisor, reg: reg, dlog: dlog}
	v1 := e.Group("/api/v1")
	v1.POST("/best", s.handleBest)
	v1.POST("/topk", s.handleTopK)
	v1.POST("/advise", s.handleAdvise)
	v1.POST("/advise-batch", s.handleAdviseBatch)
	e.GET("/healthz", s.handleHealth)
	return s
}

func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("starting api server")
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// httpStatus maps core errors onto status codes: precondition
// violations are the caller's fault, a missing model is 503.
func httpStatus(err error) int {
	if errors.Is(err, weights.ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func (s *Server) handleBest(c echo.Context) error {
	var req BestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	board, err := req.Position.toBoard()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	mask, err := decodeMask(req.Mask)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	move, logit, err := s.net.InferBest(&board, mask)
	if err != nil {
		return echo.NewHTTPError(httpStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, BestResponse{Move: uint16(move), Logit: logit})
}

func (s *Server) handleTopK(c echo.Context) error {
	var req TopKRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	board, err := req.Position.toBoard()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	mask, err := decodeMask(req.Mask)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	top, err := s.net.InferTopK(&board, mask, req.K)
	if err != nil {
		return echo.NewHTTPError(httpStatus(err), err.Error())
	}
	// Sentinel entries mean fewer than k legal moves; they are
	// internal and never serialized.
	present := lo.Filter(top, func(ml network.MoveLogit, _ int) bool {
		return ml.Logit != network.SentinelLogit
	})
	return c.JSON(http.StatusOK, TopKResponse{
		Moves: lo.Map(present, func(ml network.MoveLogit, _ int) BestResponse {
			return BestResponse{Move: uint16(ml.Move), Logit: ml.Logit}
		}),
	})
}

func (s *Server) advise(req *AdviseRequest) (*AdviseResponse, int, error) {
	q, err := req.toQuery()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	d, err := s.advisor.Advise(q)
	if err != nil {
		return nil, httpStatus(err), err
	}
	if s.dlog != nil {
		if err := s.dlog.Record(d); err != nil {
			log.Err(err).Msg("recording decision")
		}
	}
	return &AdviseResponse{
		Move:       uint16(d.Move),
		Score:      d.Score,
		Logit:      d.Logit,
		ReplyLogit: d.ReplyLogit,
		MyCapture:  d.MyCapture,
		OppCapture: d.OppCapture,
		PoolSize:   d.PoolSize,
		Version:    d.Version,
	}, http.StatusOK, nil
}

func (s *Server) handleAdvise(c echo.Context) error {
	var req AdviseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, status, err := s.advise(&req)
	if err != nil {
		return echo.NewHTTPError(status, err.Error())
	}
	return c.JSON(status, resp)
}

// handleAdviseBatch runs independent queries concurrently. Calls never
// parallelize internally, only across queries.
func (s *Server) handleAdviseBatch(c echo.Context) error {
	var req AdviseBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Queries) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty batch")
	}
	decisions := make([]AdviseResponse, len(req.Queries))
	g, _ := errgroup.WithContext(c.Request().Context())
	for i := range req.Queries {
		i := i
		g.Go(func() error {
			resp, _, err := s.advise(&req.Queries[i])
			if err != nil {
				return err
			}
			decisions[i] = *resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return echo.NewHTTPError(httpStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, AdviseBatchResponse{Decisions: decisions})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Ready:   s.reg.Ready(),
		Version: s.reg.Version(),
	})
}
