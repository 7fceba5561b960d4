// Command dropcollection drops the document chunk collection from Milvus.
// Use it to rebuild the index from scratch after changing the embedding
// model or chunking parameters; documents must be re-uploaded afterwards.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"classcare-chatbot/internal/config"
	milvusClient "classcare-chatbot/internal/platform/milvus"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	store := milvusClient.NewStore(milvusClient.Config{
		Address:    cfg.Milvus.Addr(),
		Username:   cfg.Milvus.Username,
		Password:   cfg.Milvus.Password,
		Database:   cfg.Milvus.Database,
		Collection: cfg.Milvus.Collection,
		Dimension:  cfg.Embedding.Dimension,
		Timeout:    time.Duration(cfg.Milvus.TimeoutSeconds) * time.Second,
	})

	ctx := context.Background()
	count, err := store.RowCount(ctx)
	if err != nil {
		log.Fatalf("connect milvus failed: %v", err)
	}
	fmt.Printf("collection %q holds %d rows\n", cfg.Milvus.Collection, count)

	if !*yes && !confirm(cfg.Milvus.Collection) {
		fmt.Println("aborted")
		return
	}

	if err := store.Drop(ctx); err != nil {
		log.Fatalf("drop collection failed: %v", err)
	}
	fmt.Printf("dropped collection %q\n", cfg.Milvus.Collection)
}

func confirm(collection string) bool {
	fmt.Printf("drop collection %q and all its chunks? [y/N]: ", collection)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
