// internal/core/usecases/stage.go
package usecases

import (
	"context"
	"fmt"
	"time"

	"webnmap/internal/core/domain"
)

// Nombres de las etapas del escaneo, en orden de ejecución.
const (
	StagePorts     = "ports"
	StageDNS       = "dns"
	StageExposure  = "exposure"
	StageWhois     = "whois"
	StageIntel     = "intel"
	StageStructure = "structure"
	StageDirBrute  = "dir_brute"
	StageCache     = "cache"
)

// Stages lista las etapas en orden (UI, métricas).
var Stages = []string{
	StagePorts, StageDNS, StageExposure, StageWhois,
	StageIntel, StageStructure, StageDirBrute, StageCache,
}

// runStage ejecuta fn como una etapa: la notifica al observer, la cronometra
// y convierte un error o un pánico en una entrada de result.Errors.
// Con ctx ya cancelado la etapa no se ejecuta y se anota como error.
func (o *Orchestrator) runStage(ctx context.Context, result *domain.ScanResult, name string, fn func(ctx context.Context) error) {
	if err := ctx.Err(); err != nil {
		result.AddError(name, "skipped: "+err.Error())
		o.observer.StageSkipped(name, err.Error())
		return
	}

	o.observer.StageStarted(name)
	start := time.Now()

	err := func() (err error) {
		defer recoverInto(&err)
		return fn(ctx)
	}()

	elapsed := time.Since(start)
	if err != nil {
		result.AddError(name, err.Error())
		o.logger.Warn("stage failed", "stage", name, "error", err.Error())
	} else {
		o.logger.Debug("stage completed", "stage", name, "duration_ms", elapsed.Milliseconds())
	}

	o.metrics.ObserveStage(name, elapsed, err != nil)
	o.observer.StageFinished(name, elapsed, err)
}

func (o *Orchestrator) skip(name, reason string) {
	o.logger.Debug("stage skipped", "stage", name, "reason", reason)
	o.observer.StageSkipped(name, reason)
}

// recoverInto convierte un pánico en *err. Debe llamarse con defer.
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}
