package stores_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/mapper"
	"github.com/polocloud/polocloud/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:            ":memory:", // Use in-memory database for example
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}, nil)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize the database connection and run migrations
	ctx := context.Background()
	if err := store.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleNewTable demonstrates persisting groups.
func ExampleNewTable() {
	store, err := stores.NewSQLiteStore(stores.Config{Path: ":memory:"}, nil)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if err := store.Open(ctx); err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	groups := stores.NewTable[string](store, mapper.Groups, func(name string) string { return name })

	lobby, err := entity.NewGroup(entity.GroupSpec{
		Name:             "lobby",
		MinMemory:        512,
		MaxMemory:        1024,
		MaxOnlineService: 2,
		Platform:         entity.PlatformIndex{Name: "paper", Version: "1.21.4"},
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := groups.Insert(ctx, lobby.Name(), lobby); err != nil {
		log.Fatal(err)
	}

	got, err := groups.Get(ctx, "lobby")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(got.Name(), got.MaxMemory())
	// Output: lobby 1024
}
