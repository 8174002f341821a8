package server

import (
	"context"
	"fmt"
	"net/http"

	"memescan/internal/domain/entity"
	"memescan/pkg/httpx/reply"
	"memescan/pkg/lox"
	"memescan/pkg/rest"
)

type trackerService interface {
	Recent(ctx context.Context, limit int) ([]entity.TrackedToken, error)
	Events(ctx context.Context, address string, limit int) ([]entity.TokenEvent, error)
}

type TrackerServer struct {
	trackerService trackerService
}

func NewTrackerServer(trackerService trackerService) TrackerServer {
	return TrackerServer{
		trackerService: trackerService,
	}
}

func (s TrackerServer) getV1TrackedTokens(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	tokens, err := s.trackerService.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("trackerService.Recent: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.TrackedTokenList{
		Tokens: lox.Map(tokens, newRESTTrackedToken),
	})

	return nil
}

func (s TrackerServer) getV1TrackedTokenEvents(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	address, err := parseAddressParam(r)
	if err != nil {
		return err
	}

	limit, err := parseLimit(r)
	if err != nil {
		return err
	}

	events, err := s.trackerService.Events(ctx, address.String(), limit)
	if err != nil {
		return fmt.Errorf("trackerService.Events: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.TokenEventList{
		Events: lox.Map(events, newRESTTokenEvent),
	})

	return nil
}
