package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shoplist/internal"
	"shoplist/internal/api"
	"shoplist/internal/catalog"
	"shoplist/internal/config"
	"shoplist/internal/connectors"
	"shoplist/internal/ingredient"
	"shoplist/internal/listener"
	"shoplist/internal/logging"
	"shoplist/internal/pipeline"
	"shoplist/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	// Commands that need neither the database nor the catalog.
	switch cmd {
	case "parse":
		runParse(cfg, args)
		return
	case "vocab:schema":
		schema, err := ingredient.VocabularySchema()
		must(err)
		fmt.Println(string(schema))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	parser, err := pipeline.NewParserFromConfig(cfg)
	must(err)

	switch cmd {
	case "list:create":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "list name")
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "text", "text|html|xlsx|pdf|email")
		_ = fs.Parse(args)
		if *input == "" {
			must(fmt.Errorf("--input is required"))
		}
		lines, err := readInput(*inType, *input)
		must(err)
		list, items, err := pipeline.NewListService(db, cfg, parser).Create(ctx, *name, lines, nil)
		must(err)
		fmt.Printf("list created id=%d publicId=%s items=%d\n", list.ID, list.PublicID, len(items))
	case "list:show":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "list id")
		_ = fs.Parse(args)
		if *id == 0 {
			lists, err := db.ListLists(50)
			must(err)
			for _, l := range lists {
				fmt.Printf("%d\t%s\t%d items\t%s\n", l.ID, l.Name, l.ItemCount, l.CreatedAt)
			}
			return
		}
		list, err := db.GetList(*id)
		must(err)
		items, err := db.GetListItems(*id)
		must(err)
		fmt.Printf("%s (%d items)\n", list.Name, len(items))
		for _, item := range items {
			aisle := "Unsorted"
			if item.Aisle != nil && *item.Aisle != "" {
				aisle = *item.Aisle
			}
			fmt.Printf("  [%s] %s\t%s\t%s\n", aisle, item.Quantity, item.Item, item.MatchStatus)
		}
	case "list:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int64("id", 0, "list id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(args)
		if *id == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--id and --out are required"))
		}
		list, err := pipeline.NewListService(db, cfg, parser).Export(*id, *out)
		must(err)
		fmt.Printf("exported list id=%d to %s\n", list.ID, *out)
	case "catalog:initial-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.InitialSync(ctx)
		must(err)
		fmt.Printf("initial sync complete: %d products\n", count)
	case "catalog:incremental-sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mode := fs.String("mode", "", "hour|day")
		_ = fs.Parse(args)
		if strings.TrimSpace(*mode) == "" {
			must(fmt.Errorf("--mode is required"))
		}
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.IncrementalSync(ctx, *mode)
		must(err)
		fmt.Printf("incremental sync complete mode=%s products=%d\n", *mode, count)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(args)
		conn, err := connectors.New(cfg, *provider)
		must(err)
		result, err := connectors.NewFetchService(db, cfg.RawMailDir, conn).FetchAndStore(ctx, *label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(args)
		processor := pipeline.NewProcessingService(db, cfg, parser)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(ctx, *provider, *messageID)
			must(err)
			fmt.Printf("processed email id=%d list=%d items=%d skipped=%t\n", res.EmailID, res.ListID, res.Items, res.Skipped)
			return
		}
		emails, items, err := processor.ProcessPending(ctx, *batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d items=%d\n", emails, items)
	case "mail:listen":
		must(listener.NewService(db, cfg, parser, nil).Run(ctx))
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(args)
		must(serve(ctx, *addr, api.NewRouter(db, cfg, parser)))
	default:
		usage()
		os.Exit(1)
	}
}

// runParse prints the parsed records of an input as JSON, one array per run.
func runParse(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	input := fs.String("input", "", "input file path; stdin when empty")
	inType := fs.String("type", "text", "text|html|xlsx|pdf|email")
	_ = fs.Parse(args)

	parser, err := pipeline.NewParserFromConfig(cfg)
	must(err)

	var lines []internal.SourceLine
	if *input == "" {
		blob, err := io.ReadAll(os.Stdin)
		must(err)
		lines, err = pipeline.ExtractLinesFromInput(*inType, string(blob))
		must(err)
	} else {
		lines, err = readInput(*inType, *input)
		must(err)
	}

	items, err := pipeline.NewBuilder(parser, nil, cfg.ParseWorkers).Build(context.Background(), lines)
	must(err)
	out := make([]ingredient.ParsedIngredient, 0, len(items))
	for _, item := range items {
		out = append(out, ingredient.ParsedIngredient{Quantity: item.Quantity, Item: item.Item})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	must(enc.Encode(out))
}

// readInput loads text and html inputs from path; binary formats are read by
// the extractor itself.
func readInput(inType, path string) ([]internal.SourceLine, error) {
	switch inType {
	case "text", "html":
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return pipeline.ExtractLinesFromInput(inType, string(blob))
	default:
		return pipeline.ExtractLinesFromInput(inType, path)
	}
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func usage() {
	fmt.Println("usage: shoplist <command>")
	fmt.Println("commands:")
	fmt.Println("  parse [--input=recipe.txt] [--type=text|html|xlsx|pdf|email]")
	fmt.Println("  list:create --input=... [--type=text|html|xlsx|pdf|email] [--name=...]")
	fmt.Println("  list:show [--id=1]")
	fmt.Println("  list:export --id=1 --out=./out/list.xlsx")
	fmt.Println("  catalog:initial-sync")
	fmt.Println("  catalog:incremental-sync --mode=hour|day")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  serve [--addr=:8080]")
	fmt.Println("  vocab:schema")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
