package http

import (
	"encoding/json"
	"net/http"

	"socialgraph/src/domain"
)

func (s *Server) NewsFeed(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	page, err := s.feedService.ComposeFeed(r.Context(), actor, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FeedPageDTO{Posts: page.Posts, NextCursor: page.NextCursor})
}

// ListPosts serves an author timeline; user_id defaults to the caller.
func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	authorID := queryInt64(r, "user_id")
	if authorID == 0 {
		authorID = actor.UserID
	}

	postList, err := s.postService.ListByAuthor(r.Context(), actor, authorID, queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postList)
}

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	var request PostCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	post, err := s.postService.Create(r.Context(), actor, request.Caption, request.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := s.postService.Get(r.Context(), actor, postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var request PostPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	post, err := s.postService.UpdateCaption(r.Context(), actor, postID, request.Caption)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.postService.Delete(r.Context(), actor, postID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) LikePost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.postService.Like(r.Context(), actor, postID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) UnlikePost(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.postService.Unlike(r.Context(), actor, postID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListComments(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := s.postService.ListComments(r.Context(), actor, postID, queryInt(r, "limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var request CommentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, domain.ErrInvalidOperation)
		return
	}

	comment, err := s.postService.Comment(r.Context(), actor, postID, request.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) DeleteComment(w http.ResponseWriter, r *http.Request, actor domain.Identity) {
	commentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.postService.DeleteComment(r.Context(), actor, commentID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
