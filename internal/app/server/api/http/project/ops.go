package project

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "projects-list",
		Method:      http.MethodGet,
		Path:        "/api/projects",
		Summary:     "List the user's projects",
		Tags:        []string{"projects"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "projects-get",
		Method:      http.MethodGet,
		Path:        "/api/projects/{name}",
		Summary:     "Get one project record",
		Description: "Also serves as the existence probe during publish name resolution.",
		Tags:        []string{"projects"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "projects-create",
		Method:      http.MethodPut,
		Path:        "/api/projects/{name}",
		Summary:     "Store a published project record",
		Description: "Records are immutable; a publish always writes a new uniquely named record.",
		Tags:        []string{"projects"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) uploadBlobOp() huma.Operation {
	return huma.Operation{
		OperationID: "blobs-upload",
		Method:      http.MethodPut,
		Path:        "/api/blobs/{path...}",
		Summary:     "Upload a photo blob",
		Tags:        []string{"blobs"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) downloadBlobOp() huma.Operation {
	return huma.Operation{
		OperationID: "blobs-download",
		Method:      http.MethodGet,
		Path:        "/api/blobs/{path...}",
		Summary:     "Download a photo blob",
		Tags:        []string{"blobs"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
