package project

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"geotrail/internal/app/server/api/http/middleware/auth"
	"geotrail/internal/domain/project"
)

type Handler struct {
	service    project.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service project.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.uploadBlobOp(), h.uploadBlob)
	huma.Register(api, h.downloadBlobOp(), h.downloadBlob)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	projects, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: listResponse{Projects: projects},
	}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*getOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	p, err := h.service.Get(ctx, userID, input.Name)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, huma.Error404NotFound("project not found")
		}
		if errors.Is(err, project.ErrInvalidName) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	return &getOutput{Body: *p}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	// The path segment is authoritative for the record name.
	p := input.Body
	p.Name = input.Name

	stored, err := h.service.Create(ctx, userID, p)
	if err != nil {
		if errors.Is(err, project.ErrInvalidName) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	return &createOutput{Body: *stored}, nil
}

func (h *Handler) uploadBlob(ctx context.Context, input *uploadBlobInput) (*uploadBlobOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.SaveBlob(ctx, userID, input.Path, input.RawBody); err != nil {
		if errors.Is(err, project.ErrInvalidName) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	return &uploadBlobOutput{
		Body: blobResponse{Status: "Ok"},
	}, nil
}

func (h *Handler) downloadBlob(ctx context.Context, input *downloadBlobInput) (*downloadBlobOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	data, err := h.service.GetBlob(ctx, userID, input.Path)
	if err != nil {
		if errors.Is(err, project.ErrBlobNotFound) {
			return nil, huma.Error404NotFound("blob not found")
		}
		return nil, err
	}

	return &downloadBlobOutput{
		ContentType: "application/octet-stream",
		Body:        data,
	}, nil
}
