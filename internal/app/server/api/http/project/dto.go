package project

import "geotrail/internal/domain/project"

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Projects []project.Project `json:"projects"`
}

type getInput struct {
	Name string `path:"name" doc:"Project name"`
}

type getOutput struct {
	Body project.Project
}

type createInput struct {
	Name string `path:"name" doc:"Project name"`
	Body project.Project
}

type createOutput struct {
	Body project.Project
}

type uploadBlobInput struct {
	Path    string `path:"path" doc:"Blob path, e.g. trip/photo_1.jpg"`
	RawBody []byte `contentType:"application/octet-stream"`
}

type uploadBlobOutput struct {
	Body blobResponse
}

type blobResponse struct {
	Status string `json:"status"`
}

type downloadBlobInput struct {
	Path string `path:"path" doc:"Blob path, e.g. trip/photo_1.jpg"`
}

type downloadBlobOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
