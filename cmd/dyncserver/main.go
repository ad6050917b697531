/*
dyncserver is the decision engine behind a turn-based dynamic campaign: it
ingests the host simulator's per-turn route and unit reports over HTTP,
runs the movement AI and battle scheduling for one turn, and persists the
resulting campaign state to disk and the resulting battle statistics to
Redis. A single campaign is held in memory for the life of the process;
nothing here shards or clusters across campaigns, following the source
tool's one-campaign-per-process design.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/redis/go-redis/v9"

	"dyncserver/campaign"
	"dyncserver/config"
	"dyncserver/model"
	"dyncserver/observer"
	"dyncserver/persistence"
	"dyncserver/rpcserver"
	"dyncserver/services"
	"dyncserver/stats"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"
)

const broadcastInterval = 250 * time.Millisecond

// broadcastScores samples the lock-free score gauge on a steady tick and
// pushes a snapshot to every connected observer client. Stage and support
// counts are read under the campaign lock, so a tick that arrives while a
// turn holds that lock waits for the turn to finish.
func broadcastScores(ctx context.Context, hub *observer.Hub, scores *observer.ScoreGauge, c *campaign.Campaign) {
	ticks := channerics.NewTicker(ctx.Done(), broadcastInterval)
	for range ticks {
		c.Lock()
		stage := c.Stage
		redSupport := c.Map.GetNumSupportUnits(model.Red)
		blueSupport := c.Map.GetNumSupportUnits(model.Blue)
		c.Unlock()

		red, blue := scores.Read()
		hub.Broadcast(observer.Snapshot{
			Stage:       stage,
			RedScore:    int(red),
			BlueScore:   int(blue),
			RedSupport:  redSupport,
			BlueSupport: blueSupport,
		})
	}
}

// softwareVersion is stamped into every snapshot this process writes. The
// floor below which Load refuses an older snapshot is the separate
// -min-version flag.
const softwareVersion = "1.0.0.0"

var (
	addr         *string
	configPath   *string
	snapshotPath *string
	redisAddr    *string
	minVersion   *string
)

func init() {
	addr = flag.String("addr", ":8080", "address to serve the campaign RPC API on")
	configPath = flag.String("config", "./dyncserver.cfg", "path to the sectioned configuration file")
	snapshotPath = flag.String("snapshot", "./campaign.json", "path to the campaign snapshot file")
	redisAddr = flag.String("redis", "localhost:6379", "address of the redis instance backing battle statistics")
	minVersion = flag.String("min-version", "0.0.0.0", "oldest snapshot software_version this process will resurrect")
	flag.Parse()
}

func loadOrNewCampaign(store *persistence.Store, cfg *config.Config) (*campaign.Campaign, error) {
	if store.Exists() {
		c, err := store.Load(*minVersion)
		if err == nil {
			return c, nil
		}
		if _, incompatible := err.(persistence.ErrIncompatibleSnapshot); !incompatible {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		log.Printf("snapshot incompatible, starting a fresh campaign: %v", err)
	}
	seed := time.Now().UnixNano()
	c := campaign.New(worldmap.New(graph.New()), seed, softwareVersion)
	c.AllowedAAUnits = map[model.Coalition][]string{
		model.Red:  cfg.Campaign.AARed,
		model.Blue: cfg.Campaign.AABlue,
	}
	return c, nil
}

func run() error {
	if err := config.WriteDefault(*configPath); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	svc := services.New(cfg, *snapshotPath, logger)

	store := persistence.NewStore(*snapshotPath)
	c, err := loadOrNewCampaign(store, cfg)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer rdb.Close()
	statStore := stats.NewStore(rdb)

	hub := observer.NewHub()
	scores := observer.NewScoreGauge()

	srv := rpcserver.New(c, svc, statStore, scores)
	router := srv.Router()
	router.HandleFunc("/watch", hub.ServeWebsocket)

	broadcastCtx, broadcastCancel := context.WithCancel(context.Background())
	defer broadcastCancel()
	go broadcastScores(broadcastCtx, hub, scores, c)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("dyncserver listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
