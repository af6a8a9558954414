package queue

import (
	"github.com/postrelay/postrelay/internal/dispatch"
	"github.com/postrelay/postrelay/internal/repository"
	"github.com/postrelay/postrelay/internal/service"
)

type Queue struct {
	pr         repository.PostRepository
	dispatcher *dispatch.Dispatcher
	status     service.StatusService
}

func NewQueue(
	pr repository.PostRepository,
	dispatcher *dispatch.Dispatcher,
	status service.StatusService) *Queue {
	return &Queue{
		pr:         pr,
		dispatcher: dispatcher,
		status:     status,
	}
}

const TaskTypeDispatchPost = "dispatch:post"

// DispatchPostPayload is the typed job record a fired schedule becomes. It
// mirrors the four fields of the timer key: everything else is read fresh
// from the post row when the worker runs.
type DispatchPostPayload struct {
	Kind      string `json:"kind"`
	PageID    string `json:"page_id"`
	PostID    string `json:"post_id"`
	PageToken string `json:"page_token"`
}
