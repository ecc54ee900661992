package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"socialgraph/src/services/chat"
	"socialgraph/src/services/feed"
	"socialgraph/src/services/identity"
	"socialgraph/src/services/notifications"
	"socialgraph/src/services/posts"
	"socialgraph/src/services/social"
)

// Server is the REST surface over the social graph.
type Server struct {
	logger *slog.Logger
	server *http.Server
	mux    *http.ServeMux
	port   int

	identityService     *identity.IdentityService
	socialService       *social.SocialService
	feedService         *feed.FeedService
	postService         *posts.PostService
	chatService         *chat.ChatService
	notificationService *notifications.NotificationService
}

func NewServer(
	logger *slog.Logger,
	port int,
	identityService *identity.IdentityService,
	socialService *social.SocialService,
	feedService *feed.FeedService,
	postService *posts.PostService,
	chatService *chat.ChatService,
	notificationService *notifications.NotificationService,
) *Server {
	server := &Server{
		mux:                 http.NewServeMux(),
		port:                port,
		logger:              logger,
		identityService:     identityService,
		socialService:       socialService,
		feedService:         feedService,
		postService:         postService,
		chatService:         chatService,
		notificationService: notificationService,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Identity
	server.mux.HandleFunc("POST /v1/register", server.Register)
	server.mux.HandleFunc("POST /v1/token", server.Token)
	server.mux.HandleFunc("POST /v1/token/refresh", server.RefreshToken)
	server.mux.HandleFunc("GET /v1/user", server.protected(server.GetSelf))
	server.mux.HandleFunc("PATCH /v1/user", server.protected(server.UpdateSelf))
	server.mux.HandleFunc("DELETE /v1/user", server.protected(server.DeleteSelf))
	server.mux.HandleFunc("GET /v1/users/search", server.protected(server.SearchUsers))

	// Relationship graph
	server.mux.HandleFunc("GET /v1/friendrequests", server.protected(server.ListFriendRequests))
	server.mux.HandleFunc("POST /v1/friendrequests", server.protected(server.SendFriendRequest))
	server.mux.HandleFunc("POST /v1/friendrequests/{id}/accept", server.protected(server.AcceptFriendRequest))
	server.mux.HandleFunc("POST /v1/friendrequests/{id}/reject", server.protected(server.RejectFriendRequest))
	server.mux.HandleFunc("POST /v1/profiles/{id}/follow", server.protected(server.Follow))
	server.mux.HandleFunc("DELETE /v1/profiles/{id}/follow", server.protected(server.Unfollow))
	server.mux.HandleFunc("GET /v1/profiles/{id}/followers_count", server.protected(server.FollowersCount))
	server.mux.HandleFunc("GET /v1/profiles/{id}/followers", server.protected(server.ListFollowers))
	server.mux.HandleFunc("GET /v1/profiles/{id}/friends", server.protected(server.ListFriends))

	// Posts & feed
	server.mux.HandleFunc("GET /v1/posts/news_feed", server.protected(server.NewsFeed))
	server.mux.HandleFunc("GET /v1/posts", server.protected(server.ListPosts))
	server.mux.HandleFunc("POST /v1/posts", server.protected(server.CreatePost))
	server.mux.HandleFunc("GET /v1/posts/{id}", server.protected(server.GetPost))
	server.mux.HandleFunc("PATCH /v1/posts/{id}", server.protected(server.UpdatePost))
	server.mux.HandleFunc("DELETE /v1/posts/{id}", server.protected(server.DeletePost))
	server.mux.HandleFunc("POST /v1/posts/{id}/like", server.protected(server.LikePost))
	server.mux.HandleFunc("DELETE /v1/posts/{id}/like", server.protected(server.UnlikePost))
	server.mux.HandleFunc("GET /v1/posts/{id}/comments", server.protected(server.ListComments))
	server.mux.HandleFunc("POST /v1/posts/{id}/comments", server.protected(server.CreateComment))
	server.mux.HandleFunc("DELETE /v1/comments/{id}", server.protected(server.DeleteComment))

	// Chat & notifications
	server.mux.HandleFunc("GET /v1/chats", server.protected(server.ListChats))
	server.mux.HandleFunc("GET /v1/messages", server.protected(server.ListMessages))
	server.mux.HandleFunc("POST /v1/messages", server.protected(server.SendMessage))
	server.mux.HandleFunc("GET /v1/notifications", server.protected(server.ListNotifications))
	server.mux.HandleFunc("POST /v1/notifications/read", server.protected(server.MarkNotificationsRead))

	return server
}

func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
