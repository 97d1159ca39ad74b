package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/port"
	"github.com/evertl/reelpilot/internal/retry"
	"github.com/evertl/reelpilot/internal/timeline"
)

// Orchestrator sequences the ingest and build pipelines over the external
// collaborators. One instance serves all folders; per-job state lives in
// the registry records.
type Orchestrator struct {
	registry *Registry
	store    port.SidecarStore
	probe    port.MediaProbe
	encoder  port.ProxyEncoder
	analysis port.AnalysisService
	host     port.EditHost
	exec     *retry.Executor

	asmOpts          timeline.Options
	transcodeWorkers int
}

func NewOrchestrator(
	registry *Registry,
	store port.SidecarStore,
	probe port.MediaProbe,
	encoder port.ProxyEncoder,
	analysis port.AnalysisService,
	host port.EditHost,
	exec *retry.Executor,
	asmOpts timeline.Options,
	transcodeWorkers int,
) *Orchestrator {
	if transcodeWorkers < 1 {
		transcodeWorkers = 1
	}
	return &Orchestrator{
		registry:         registry,
		store:            store,
		probe:            probe,
		encoder:          encoder,
		analysis:         analysis,
		host:             host,
		exec:             exec,
		asmOpts:          asmOpts,
		transcodeWorkers: transcodeWorkers,
	}
}

// StartIngest admits a background ingest of folder. When buildInstruction
// is non-empty a build is chained automatically once ingest completes.
func (o *Orchestrator) StartIngest(folder, buildInstruction string) error {
	folder = filepath.Clean(folder)
	return o.registry.Start(folder, domain.JobKindIngest, func(ctx context.Context, p *Progress) error {
		if err := o.runIngest(ctx, p, folder); err != nil {
			return err
		}
		if buildInstruction != "" {
			if err := o.StartBuild(folder, buildInstruction); err != nil {
				logger.Error.Printf("auto-build after ingest failed to start: %v", err)
			}
		}
		return nil
	})
}

func (o *Orchestrator) IngestStatus(folder string) (*domain.JobRecord, error) {
	return o.registry.Status(filepath.Clean(folder), domain.JobKindIngest)
}

// runIngest analyses every media file in the folder that has no sidecar
// yet. Proxies encode in parallel up to the transcode fan-out; upload and
// analysis stay sequential to respect service rate limits. One file's
// failure never aborts the rest: it is recorded on the job and skipped.
func (o *Orchestrator) runIngest(ctx context.Context, p *Progress, folder string) error {
	videos, audio, err := domain.ListMedia(folder)
	if err != nil {
		return fmt.Errorf("list media in %s: %w", folder, err)
	}
	if len(videos)+len(audio) == 0 {
		return &domain.PreconditionError{Reason: "no media files in " + folder}
	}

	var pendingVideos, pendingAudio []string
	cached := 0
	for _, f := range videos {
		if o.store.Has(f) {
			cached++
			continue
		}
		pendingVideos = append(pendingVideos, f)
	}
	for _, f := range audio {
		if o.store.Has(f) {
			cached++
			continue
		}
		pendingAudio = append(pendingAudio, f)
	}

	pending := append(append([]string{}, pendingVideos...), pendingAudio...)
	p.SetTotal(len(pending))
	if len(pending) == 0 {
		p.SetResult(fmt.Sprintf("nothing to do: all %d files already analyzed", cached))
		return nil
	}

	uploadPaths := o.encodeProxies(ctx, p, pendingVideos)

	for _, mediaPath := range pending {
		if err := o.ingestOne(ctx, p, mediaPath, uploadPaths); err != nil {
			p.AddError(fmt.Sprintf("%s: %v", filepath.Base(mediaPath), err))
			logger.Error.Printf("ingest failed for %s: %v", logger.SanitizeForLog(mediaPath), err)
		}
		p.Advance()
	}

	p.SetResult(fmt.Sprintf("analyzed %d new files (%d already cached)", len(pending), cached))
	return nil
}

// encodeProxies runs phase one: parallel proxy encodes with bounded
// fan-out. Failures surface later when the file's upload falls back to the
// original source.
func (o *Orchestrator) encodeProxies(ctx context.Context, p *Progress, videos []string) map[string]string {
	out := make(map[string]string, len(videos))
	if len(videos) == 0 {
		return out
	}

	p.SetStep("encoding proxies", "")

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.transcodeWorkers)

	for _, video := range videos {
		wg.Add(1)
		sem <- struct{}{}
		go func(video string) {
			defer wg.Done()
			defer func() { <-sem }()

			uploadPath, err := o.encoder.Prepare(ctx, video)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn.Printf("proxy encode failed for %s, uploading original: %v", filepath.Base(video), err)
				return
			}
			out[video] = uploadPath
		}(video)
	}
	wg.Wait()
	return out
}

// ingestOne runs probe -> upload -> analyze -> validate-against-probe ->
// persist for a single file. The probe is authoritative: whatever fps or
// duration the analysis service claimed is overwritten before the sidecar
// is persisted.
func (o *Orchestrator) ingestOne(ctx context.Context, p *Progress, mediaPath string, uploadPaths map[string]string) error {
	kind, _ := domain.KindOf(mediaPath)
	base := filepath.Base(mediaPath)

	p.SetStep("probing", base)
	probed, err := o.probe.Probe(ctx, mediaPath)
	if err != nil {
		return err
	}

	uploadPath := mediaPath
	if alt, ok := uploadPaths[mediaPath]; ok {
		uploadPath = alt
	}

	p.SetStep("uploading", base)
	ref, err := retry.DoValue(ctx, o.exec, "upload "+base, func(ctx context.Context) (*port.FileRef, error) {
		return o.analysis.UploadMedia(ctx, uploadPath)
	})
	if err != nil {
		return err
	}

	p.SetStep("analyzing", base)
	var entry *domain.Sidecar
	if kind == domain.MediaKindVideo {
		entry, err = retry.DoValue(ctx, o.exec, "analyze "+base, func(ctx context.Context) (*domain.Sidecar, error) {
			return o.analysis.AnalyzeVideo(ctx, ref)
		})
	} else {
		entry, err = retry.DoValue(ctx, o.exec, "analyze "+base, func(ctx context.Context) (*domain.Sidecar, error) {
			return o.analysis.AnalyzeAudio(ctx, ref)
		})
	}
	if err != nil {
		return err
	}

	entry.FilePath = mediaPath
	entry.Filename = base
	entry.Kind = kind
	entry.Duration = probed.DurationSec
	if kind == domain.MediaKindVideo {
		entry.FPS = probed.FPS
	}

	return o.store.Save(mediaPath, entry)
}
