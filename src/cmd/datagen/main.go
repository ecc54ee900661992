package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"socialgraph/src/helper/env"
	"socialgraph/src/infra/postgres"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Bulk data generator for load testing: users, follow edges, accepted
// friend requests with their friendship pairs, and posts.

// One shared hash for every generated account ("password123"); hashing
// per user would dominate the runtime.
const seedPasswordHash = "$argon2id$v=19$m=65536,t=3,p=2$c29jaWFsZ3JhcGhzZWVk$Zm9yIGxvYWQgdGVzdGluZyBvbmx5LCBub3QgYSBzZWNyZXQ"

type userBatch struct {
	rows [][]any
}

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 50)

	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	numUsers := flag.Int("users", 10000, "number of users to create")
	followsPerUser := flag.Int("follows", 20, "average follow edges per user")
	friendsPerUser := flag.Int("friends", 5, "average friendships per user")
	postsPerUser := flag.Int("posts", 10, "average posts per user")
	bulkSize := flag.Int("bulk-size", 1000, "rows per COPY batch")
	numWorkers := flag.Int("workers", 8, "concurrent insert workers")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		cancel()
	}()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	start := time.Now()

	log.Printf("Generating %d users...", *numUsers)
	if err := generateUsers(ctx, db, *numUsers, *bulkSize, *numWorkers); err != nil {
		log.Fatalf("User generation failed: %v", err)
	}

	userIDs, err := loadUserIDs(ctx, db)
	if err != nil {
		log.Fatalf("Failed to load user ids: %v", err)
	}
	log.Printf("Loaded %d user ids", len(userIDs))

	log.Printf("Generating graph edges and posts...")
	if err := generateGraph(ctx, db, userIDs, *followsPerUser, *friendsPerUser, *postsPerUser, *bulkSize, *numWorkers); err != nil {
		log.Fatalf("Graph generation failed: %v", err)
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Second))
}

func generateUsers(ctx context.Context, db *pgxpool.Pool, total, bulkSize, workers int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan userBatch, workers*2)
	var inserted int64
	var wg sync.WaitGroup

	progressDone := startProgress(ctx, "users", &inserted)
	defer close(progressDone)

	errChan := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				count, err := db.CopyFrom(ctx,
					pgx.Identifier{"users"},
					[]string{"username", "email", "password_hash", "first_name", "last_name", "bio", "location"},
					pgx.CopyFromRows(batch.rows),
				)
				if err != nil {
					errChan <- fmt.Errorf("users copy failed: %w", err)
					cancel()
					return
				}
				atomic.AddInt64(&inserted, count)
			}
		}()
	}

	rows := make([][]any, 0, bulkSize)
	for i := 0; i < total; i++ {
		// Suffix keeps generated usernames/emails unique.
		suffix := fmt.Sprintf("%d%d", time.Now().UnixNano()%1_000_000, i)
		rows = append(rows, []any{
			fmt.Sprintf("%s_%s", gofakeit.Username(), suffix),
			fmt.Sprintf("%s.%s@%s", faker.FirstName(), suffix, gofakeit.DomainName()),
			seedPasswordHash,
			faker.FirstName(),
			faker.LastName(),
			gofakeit.Sentence(8),
			gofakeit.City(),
		})

		if len(rows) >= bulkSize {
			select {
			case batches <- userBatch{rows: rows}:
			case <-ctx.Done():
			}
			rows = make([][]any, 0, bulkSize)
		}
	}
	if len(rows) > 0 {
		select {
		case batches <- userBatch{rows: rows}:
		case <-ctx.Done():
		}
	}
	close(batches)
	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

func loadUserIDs(ctx context.Context, db *pgxpool.Pool) ([]int64, error) {
	rows, err := db.Query(ctx, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func generateGraph(ctx context.Context, db *pgxpool.Pool, userIDs []int64, follows, friends, posts, bulkSize, workers int) error {
	if len(userIDs) < 2 {
		return fmt.Errorf("need at least two users, got %d", len(userIDs))
	}

	// Local cancel so a failed worker also unblocks the feeding loop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var edges, friendships, postCount int64
	progressDone := startProgress(ctx, "posts", &postCount)
	defer close(progressDone)

	jobs := make(chan []int64, workers)
	errChan := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(rng32())))
			for chunk := range jobs {
				if err := generateForUsers(ctx, db, rng, chunk, userIDs, follows, friends, posts, &edges, &friendships, &postCount); err != nil {
					errChan <- err
					cancel()
					return
				}
			}
		}()
	}

	for i := 0; i < len(userIDs); i += bulkSize {
		end := i + bulkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		select {
		case jobs <- userIDs[i:end]:
		case <-ctx.Done():
			break
		}
	}
	close(jobs)
	wg.Wait()

	log.Printf("Inserted %d follow edges, %d friendship rows, %d posts", edges, friendships, postCount)

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

func generateForUsers(
	ctx context.Context,
	db *pgxpool.Pool,
	rng *rand.Rand,
	chunk []int64,
	allIDs []int64,
	follows, friends, posts int,
	edgeCount, friendshipCount, postCount *int64,
) error {
	followRows := make([][]any, 0, len(chunk)*follows)
	requestRows := make([][]any, 0, len(chunk)*friends)
	friendshipRows := make([][]any, 0, len(chunk)*friends*2)
	postRows := make([][]any, 0, len(chunk)*posts)

	for _, userID := range chunk {
		seen := map[int64]bool{userID: true}

		for f := 0; f < follows; f++ {
			target := allIDs[rng.Intn(len(allIDs))]
			if seen[target] {
				continue
			}
			seen[target] = true
			followRows = append(followRows, []any{userID, target})
		}

		// Friendships only from the lower id to avoid generating the
		// crossed pair from both sides.
		for f := 0; f < friends; f++ {
			friendID := allIDs[rng.Intn(len(allIDs))]
			if friendID <= userID {
				continue
			}
			requestRows = append(requestRows, []any{userID, friendID, "accepted"})
			friendshipRows = append(friendshipRows,
				[]any{userID, friendID, true},
				[]any{friendID, userID, true},
			)
		}

		for p := 0; p < posts; p++ {
			postRows = append(postRows, []any{
				userID,
				gofakeit.Sentence(12),
				fmt.Sprintf("https://images.%s/%s.jpg", gofakeit.DomainName(), gofakeit.UUID()),
			})
		}
	}

	// COPY has no ON CONFLICT; random collisions within a batch are rare
	// enough that plain INSERT ... ON CONFLICT DO NOTHING is used instead.
	if err := insertIgnoring(ctx, db, "INSERT INTO follow_edges (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", followRows); err != nil {
		return fmt.Errorf("follow edges insert failed: %w", err)
	}
	if err := insertIgnoring(ctx, db, "INSERT INTO friend_requests (sender_id, receiver_id, status) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING", requestRows); err != nil {
		return fmt.Errorf("friend requests insert failed: %w", err)
	}
	if err := insertIgnoring(ctx, db, "INSERT INTO friendships (user_id, friend_id, is_accepted) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING", friendshipRows); err != nil {
		return fmt.Errorf("friendships insert failed: %w", err)
	}
	if err := insertIgnoring(ctx, db, "INSERT INTO posts (author_id, caption, image_url) VALUES ($1, $2, $3)", postRows); err != nil {
		return fmt.Errorf("posts insert failed: %w", err)
	}

	atomic.AddInt64(edgeCount, int64(len(followRows)))
	atomic.AddInt64(friendshipCount, int64(len(friendshipRows)))
	atomic.AddInt64(postCount, int64(len(postRows)))
	return nil
}

func insertIgnoring(ctx context.Context, db *pgxpool.Pool, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, args := range rows {
		batch.Queue(query, args...)
	}

	results := db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func startProgress(ctx context.Context, label string, counter *int64) chan struct{} {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Printf("progress: %d %s", atomic.LoadInt64(counter), label)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()
	return done
}

var workerSeq int64

func rng32() int32 {
	return int32(atomic.AddInt64(&workerSeq, 1))
}
