package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/volttrace/volttrace/internal/adapters/archive"
	"github.com/volttrace/volttrace/internal/adapters/fileserver"
	"github.com/volttrace/volttrace/internal/adapters/logfile"
	"github.com/volttrace/volttrace/internal/adapters/modbusadc"
	"github.com/volttrace/volttrace/internal/adapters/mqtt"
	"github.com/volttrace/volttrace/internal/adapters/netlink"
	"github.com/volttrace/volttrace/internal/adapters/observability"
	"github.com/volttrace/volttrace/internal/adapters/opcuaadc"
	"github.com/volttrace/volttrace/internal/adapters/rtc"
	"github.com/volttrace/volttrace/internal/adapters/sdcard"
	"github.com/volttrace/volttrace/internal/adapters/simadc"
	"github.com/volttrace/volttrace/internal/app/config"
	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// Overrides lets embedders swap any dependency before the runtime builds its
// defaults. Nil fields keep the default adapter.
type Overrides struct {
	Clock         ports.Clock
	Reader        ports.AnalogReader
	Medium        ports.StorageMedium
	Link          ports.NetworkLink
	Session       ports.BrokerSession
	Archive       ports.ArchiveSink
	Observability ports.Observability
}

// Runtime owns the cooperative control loop: supervisor tick, scheduler
// tick, parked-upload tick, repeat. The HTTP surfaces (metrics, file
// service) are outward-facing collaborators and run on their own servers;
// the sampling path itself stays single-threaded.
type Runtime struct {
	cfg *config.Config
	pol ports.Policy
	obs ports.Observability

	clock  ports.Clock
	reader ports.AnalogReader
	medium ports.StorageMedium

	scheduler  *Scheduler
	supervisor *Supervisor
	publisher  *Publisher
	detector   *ParkedDetector
	uploader   *BacklogUploader

	link    ports.NetworkLink
	session ports.BrokerSession

	archiveSink  ports.ArchiveSink
	archiveBatch []domain.Reading
	db           *sql.DB

	metricsSrv *http.Server
	fileSrv    *http.Server
}

// New assembles a runtime from configuration. Failure to construct the clock
// or the analog reader is the one unrecoverable condition: without them no
// sampling is possible, so startup halts here.
func New(cfg *config.Config, ov Overrides) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	rt := &Runtime{cfg: cfg, pol: cfg.Policy()}

	rt.obs = ov.Observability
	if rt.obs == nil {
		rt.obs = observability.NewPromObs()
	}

	rt.clock = ov.Clock
	if rt.clock == nil {
		rt.clock = rtc.NewSystemClock()
	}

	var err error
	rt.medium = ov.Medium
	if rt.medium == nil {
		rt.medium, err = sdcard.NewMedium(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("storage medium: %w", err)
		}
	}

	rt.reader = ov.Reader
	if rt.reader == nil {
		rt.reader, err = buildReader(cfg)
		if err != nil {
			return nil, fmt.Errorf("analog reader: %w", err)
		}
	}

	writer := logfile.NewWriter(rt.medium, rt.clock, logfile.Config{
		AmpsPrefix:   cfg.Storage.AmpsPrefix,
		VoltsPrefix:  cfg.Storage.VoltsPrefix,
		WindowSize:   cfg.Sample.WindowSize,
		VerifyWrites: cfg.Storage.VerifyWrites,
	})

	if cfg.Archive.Enabled {
		rt.archiveSink = ov.Archive
		if rt.archiveSink == nil {
			rt.db, err = sql.Open("postgres", cfg.Archive.ConnString)
			if err != nil {
				return nil, fmt.Errorf("archive db: %w", err)
			}
			rt.archiveSink = archive.NewPostgresArchive(rt.db, cfg.Archive.Table)
		}
	}

	connected := func() bool { return false }
	var pub ports.SamplePublisher
	if cfg.Broker.Enabled {
		rt.link = ov.Link
		if rt.link == nil {
			rt.link = netlink.NewHostLink()
		}
		rt.session = ov.Session
		if rt.session == nil {
			link := rt.link
			rt.session = mqtt.NewSession(cfg.Broker, func() []byte {
				return StatusPayload("offline", link.IP())
			})
		}

		rt.publisher = NewPublisher(rt.session, cfg.Broker.TopicBase, rt.pol, rt.obs)
		rt.supervisor = NewSupervisor(rt.link, rt.session, rt.clock, func() {
			if err := rt.publisher.PublishStatus("online", rt.link.IP()); err != nil {
				rt.obs.LogError("status_publish_failed", err)
			}
		}, rt.pol, rt.obs)

		connected = rt.supervisor.Connected
		pub = rt.publisher

		if cfg.Parked.Enabled {
			rt.detector = NewParkedDetector(
				rt.pol.ParkedEnterThreshold,
				rt.pol.ParkedExitThreshold,
				rt.pol.ParkedConfirmTicks,
			)
			rt.uploader = NewBacklogUploader(
				rt.medium, rt.clock, rt.publisher,
				NewUploadRegistry(rt.pol.UploadRegistryCap),
				map[string]string{
					cfg.Storage.AmpsPrefix:  domain.MetricCurrent.String(),
					cfg.Storage.VoltsPrefix: domain.MetricVoltage.String(),
				},
				rt.pol, rt.obs,
			)
		}
	}

	rt.scheduler = NewScheduler(rt.clock, rt.reader, writer, pub,
		connected, rt.observeReading, rt.pol, rt.obs)

	return rt, nil
}

func buildReader(cfg *config.Config) (ports.AnalogReader, error) {
	switch cfg.Reader.Kind {
	case config.ReaderModbus:
		r, err := modbusadc.NewReader(cfg.Reader.Modbus)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.ReaderOPCUA:
		r, err := opcuaadc.NewReader(cfg.Reader.OPCUA)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return simadc.NewReader(cfg.Reader.Sim), nil
	}
}

// observeReading feeds each accepted reading to the parked detector and the
// archive batcher.
func (rt *Runtime) observeReading(r domain.Reading) {
	if rt.detector != nil {
		parked := rt.detector.Observe(r.Current)
		v := 0.0
		if parked {
			v = 1.0
		}
		rt.obs.SetGauge("volttrace_parked", v)
	}

	if rt.archiveSink == nil {
		return
	}
	rt.archiveBatch = append(rt.archiveBatch, r)
	if len(rt.archiveBatch) >= rt.pol.ArchiveFlushEvery {
		rt.flushArchive()
	}
}

func (rt *Runtime) flushArchive() {
	if len(rt.archiveBatch) == 0 {
		return
	}
	if err := rt.archiveSink.WriteBatch(rt.archiveBatch); err != nil {
		rt.obs.LogError("archive_write_failed", err,
			ports.Field{Key: "sink", Value: rt.archiveSink.Name()},
			ports.Field{Key: "batch", Value: len(rt.archiveBatch)})
		// Keep the batch for the next flush, bounded so a dead archive
		// cannot grow memory without limit.
		if over := len(rt.archiveBatch) - rt.pol.ArchiveBacklogCap; over > 0 {
			rt.archiveBatch = rt.archiveBatch[over:]
		}
		return
	}
	rt.archiveBatch = rt.archiveBatch[:0]
}

// Run starts the HTTP surfaces and blocks in the cooperative loop until the
// context is cancelled, then shuts down gracefully.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.startMetrics()
	rt.startFileServer()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rt.Shutdown(shutdownCtx)
		default:
		}

		rt.Step()
		time.Sleep(rt.pol.LoopIdle)
	}
}

// Step advances every component by one tick. Exposed so embedders can drive
// the loop themselves.
func (rt *Runtime) Step() {
	if rt.supervisor != nil {
		rt.supervisor.Tick()
	}
	rt.scheduler.Tick()
	if rt.uploader != nil && rt.detector != nil {
		rt.uploader.Tick(rt.detector.Parked(), rt.supervisor.Connected())
	}
}

// Shutdown flushes what can be flushed and releases every owned resource.
// A graceful exit publishes the retained "offline" status itself instead of
// leaving it to the broker's last-will.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	rt.flushArchive()

	if rt.publisher != nil && rt.session != nil && rt.session.Connected() {
		ip := ""
		if rt.link != nil {
			ip = rt.link.IP()
		}
		if err := rt.publisher.PublishStatus("offline", ip); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.session != nil {
		rt.session.Disconnect()
	}

	if rt.metricsSrv != nil {
		if err := rt.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if rt.fileSrv != nil {
		if err := rt.fileSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if rt.reader != nil {
		if err := rt.reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (rt *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	rt.metricsSrv = &http.Server{Addr: rt.cfg.Metrics.Addr, Handler: mux}

	go func() {
		if err := rt.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}

func (rt *Runtime) startFileServer() {
	if !rt.cfg.FileServer.Enabled {
		return
	}

	srv := fileserver.New(rt.cfg.Storage.Dir)
	rt.fileSrv = &http.Server{Addr: rt.cfg.FileServer.Addr, Handler: srv.Handler()}

	go func() {
		if err := rt.fileSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("file server exited: %v", err)
		}
	}()
}
