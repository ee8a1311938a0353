package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"shopbot/entity"
	"shopbot/lib/api/response"
	"shopbot/lib/clock"
	"shopbot/lib/sl"
)

// Core exposes the read-only views the status API serves.
type Core interface {
	StatsSnapshot(ctx context.Context) (entity.StatsDocument, error)
	ActiveCodes(ctx context.Context) ([]entity.AccessCode, error)
	UsersCount(ctx context.Context) int
}

type activeCode struct {
	Code       string `json:"code"`
	Expiration string `json:"expiration"`
	CreatedBy  int64  `json:"created_by"`
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(map[string]string{"status": "ok"}))
	}
}

func Stats(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.status"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doc, err := core.StatsSnapshot(r.Context())
		if err != nil {
			log.Error("stats snapshot", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Stats not available"))
			return
		}
		render.JSON(w, r, response.Ok(doc))
	}
}

func Codes(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With(
			sl.Module("http.handlers.status"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		codes, err := core.ActiveCodes(r.Context())
		if err != nil {
			log.Error("listing codes", sl.Err(err))
			render.Status(r, 500)
			render.JSON(w, r, response.Error("Codes not available"))
			return
		}

		out := make([]activeCode, 0, len(codes))
		for _, c := range codes {
			out = append(out, activeCode{
				Code:       c.Code,
				Expiration: clock.Stamp(c.Expiration),
				CreatedBy:  c.CreatedBy,
			})
		}
		render.JSON(w, r, response.Ok(out))
	}
}

func UsersCount(_ *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := core.UsersCount(r.Context())
		render.JSON(w, r, response.Ok(map[string]int{"count": count}))
	}
}
