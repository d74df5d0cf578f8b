// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/quibble/quibble/internal/auth"
	authpg "github.com/quibble/quibble/internal/auth/postgres"
	"github.com/quibble/quibble/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, runs migrations,
// and returns a connected pool.
func setupPostgresContainer() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("quibble_test"),
		tcpostgres.WithUsername("quibble"),
		tcpostgres.WithPassword("quibble"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("UserRepository", func() {
	var repo *authpg.UserRepository
	var cleanup func()

	BeforeEach(func() {
		pool, c, err := setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
		cleanup = c
		repo = authpg.NewUserRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Create", func() {
		It("inserts a user and assigns an ID", func() {
			ctx := context.Background()
			user, err := repo.Create(ctx, "alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(BeNumerically(">", 0))
			Expect(user.Username).To(Equal("alice"))
			Expect(user.CreatedAt).NotTo(BeZero())
		})

		It("rejects a duplicate username", func() {
			ctx := context.Background()
			_, err := repo.Create(ctx, "alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Create(ctx, "alice", "$argon2id$other")
			Expect(err).To(MatchError(auth.ErrUsernameTaken))
		})

		It("treats usernames as case sensitive", func() {
			ctx := context.Background()
			_, err := repo.Create(ctx, "alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Create(ctx, "Alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("GetByID", func() {
		It("returns a stored user", func() {
			ctx := context.Background()
			created, err := repo.Create(ctx, "alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByID(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("alice"))
			Expect(got.PasswordHash).To(Equal("$argon2id$fake"))
		})

		It("returns ErrNotFound for an unknown ID", func() {
			_, err := repo.GetByID(context.Background(), 999999)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("GetByUsername", func() {
		It("returns a stored user by exact name", func() {
			ctx := context.Background()
			created, err := repo.Create(ctx, "alice", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(created.ID))
		})

		It("returns ErrNotFound for an unknown username", func() {
			_, err := repo.GetByUsername(context.Background(), "nobody")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})
})
