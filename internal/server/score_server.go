package server

import (
	"context"
	"fmt"
	"net/http"

	"memescan/internal/domain/entity"
	"memescan/pkg/httpx/reply"
	"memescan/pkg/httpx/req"
	"memescan/pkg/lox"
	"memescan/pkg/rest"
)

type scoringService interface {
	Score(ctx context.Context, address string) (entity.ScoreResult, error)
	ScoreBatch(ctx context.Context, addresses []string) ([]entity.ScoreResult, error)
}

type ScoreServer struct {
	scoringService scoringService
}

func NewScoreServer(scoringService scoringService) ScoreServer {
	return ScoreServer{
		scoringService: scoringService,
	}
}

func (s ScoreServer) getV1Score(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	result, err := s.scoringService.Score(ctx, address.String())
	if err != nil {
		return fmt.Errorf("scoringService.Score: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTScore(result))

	return nil
}

func (s ScoreServer) postV1ScoreBatch(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.BatchScoreRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	addresses, err := lox.MapErr(request.Addresses, func(raw string) (string, error) {
		address, err := parseAddress(raw)
		return address.String(), err
	})
	if err != nil {
		return err
	}

	results, err := s.scoringService.ScoreBatch(ctx, addresses)
	if err != nil {
		return fmt.Errorf("scoringService.ScoreBatch: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.BatchScoreResponse{
		Results: lox.Map(results, newRESTScore),
	})

	return nil
}
