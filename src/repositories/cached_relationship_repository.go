package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"socialgraph/src/infra/redis"
)

// CachedRelationshipRepository is a cache-aside layer over the relationship
// query repository for the graph reads on the hot path: friend id sets,
// following id sets and follower counts. Every cached key is registered
// under the user ids it was derived from, so graph mutations invalidate by
// user id without knowing which concrete keys exist.
type CachedRelationshipRepository struct {
	logger      *slog.Logger
	queryRepo   *RelationshipQueryRepository
	redisClient *redis.RedisClient
}

func NewCachedRelationshipRepository(
	logger *slog.Logger,
	queryRepo *RelationshipQueryRepository,
	redisClient *redis.RedisClient,
) *CachedRelationshipRepository {
	return &CachedRelationshipRepository{
		logger:      logger,
		queryRepo:   queryRepo,
		redisClient: redisClient,
	}
}

func (r *CachedRelationshipRepository) FriendIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	return r.cachedIDSet(ctx, fmt.Sprintf("social:friends:%d", userID), userID, func() ([]int64, error) {
		return r.queryRepo.FriendIDsOf(ctx, userID)
	})
}

func (r *CachedRelationshipRepository) FollowingIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	return r.cachedIDSet(ctx, fmt.Sprintf("social:following:%d", userID), userID, func() ([]int64, error) {
		return r.queryRepo.FollowingIDsOf(ctx, userID)
	})
}

func (r *CachedRelationshipRepository) FollowersCount(ctx context.Context, userID int64) (int64, error) {
	cacheKey := fmt.Sprintf("social:followers_count:%d", userID)

	if r.redisClient != nil {
		cached, found, err := r.redisClient.GetKey(ctx, cacheKey)
		if err != nil {
			r.logger.Warn("Cache read failed, falling back to postgres", "key", cacheKey, "error", err)
		} else if found {
			var count int64
			if err := json.Unmarshal([]byte(cached), &count); err == nil {
				return count, nil
			}
		}
	}

	count, err := r.queryRepo.FollowersCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	r.storeInBackground(cacheKey, userID, count)
	return count, nil
}

// IsFriend goes straight to postgres. It backs the visibility gate, where
// a stale positive would leak friend-gated resources.
func (r *CachedRelationshipRepository) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	return r.queryRepo.IsFriend(ctx, userID, otherID)
}

func (r *CachedRelationshipRepository) cachedIDSet(ctx context.Context, cacheKey string, userID int64, load func() ([]int64, error)) ([]int64, error) {
	if r.redisClient != nil {
		cached, found, err := r.redisClient.GetKey(ctx, cacheKey)
		if err != nil {
			r.logger.Warn("Cache read failed, falling back to postgres", "key", cacheKey, "error", err)
		} else if found {
			var ids []int64
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return ids, nil
			}
			r.logger.Warn("Discarding unreadable cache entry", "key", cacheKey)
		}
	}

	ids, err := load()
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}

	r.storeInBackground(cacheKey, userID, ids)
	return ids, nil
}

func (r *CachedRelationshipRepository) storeInBackground(cacheKey string, userID int64, value any) {
	if r.redisClient == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		data, err := json.Marshal(value)
		if err != nil {
			r.logger.Warn("Failed to marshal cache value", "key", cacheKey, "error", err)
			return
		}

		registryKeys := []string{fmt.Sprintf("registry:user:%d", userID)}
		if err := r.redisClient.SetWithRegistry(ctx, cacheKey, string(data), registryKeys); err != nil {
			r.logger.Warn("Failed to set cache entry", "key", cacheKey, "error", err)
		}
	}()
}

// InvalidateByUserIDs drops every cache entry registered under the given
// users, plus the registries themselves.
func (r *CachedRelationshipRepository) InvalidateByUserIDs(ctx context.Context, userIDs []int64) error {
	if r.redisClient == nil || len(userIDs) == 0 {
		return nil
	}

	registryKeys := make([]string, len(userIDs))
	for i, userID := range userIDs {
		registryKeys[i] = fmt.Sprintf("registry:user:%d", userID)
	}

	registryResults, err := r.redisClient.GetSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("failed to read cache registries: %w", err)
	}

	keysToDelete := make(map[string]bool)
	for registryKey, relatedKeys := range registryResults {
		keysToDelete[registryKey] = true
		for _, relatedKey := range relatedKeys {
			keysToDelete[relatedKey] = true
		}
	}

	keys := make([]string, 0, len(keysToDelete))
	for key := range keysToDelete {
		keys = append(keys, key)
	}

	r.logger.Debug("Invalidating relationship cache", "keys", len(keys), "users", len(userIDs))
	return r.redisClient.DeleteKeys(ctx, keys)
}
