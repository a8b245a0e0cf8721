// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"webnmap/internal/core/ports"
)

// PTermPresenter implementa Presenter usando la biblioteca pterm
// para renderizar spinners, colores y símbolos en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	// Tracking de progreso
	stages        map[string]*StageProgress
	order         []string
	scanStartTime time.Time
	scanInfo      ScanInfo

	// brute force
	bruteDone  int
	bruteTotal int
	bruteFound []string

	// un spinner por etapa activa
	spinners map[string]*pterm.SpinnerPrinter
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{
		stages:   make(map[string]*StageProgress),
		spinners: make(map[string]*pterm.SpinnerPrinter),
	}
}

// Start inicia la presentación mostrando el header del escaneo
func (p *PTermPresenter) Start(info ScanInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scanInfo = info
	p.scanStartTime = time.Now()

	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("webnmap - Network Reconnaissance")

	pterm.Println()

	infoPanel := pterm.DefaultBox.
		WithTitle("Target Information").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan))

	content := fmt.Sprintf("%s Target: %s\n", IconTarget, pterm.Cyan(info.Target))
	content += fmt.Sprintf("   Host: %s\n", info.Host)
	content += fmt.Sprintf("   Mode: %s\n", pterm.Yellow(info.Mode))
	if info.TimeoutSeconds > 0 {
		content += fmt.Sprintf("%s Timeout: %ds\n", IconTime, info.TimeoutSeconds)
	} else {
		content += fmt.Sprintf("%s Timeout: none\n", IconTime)
	}
	content += fmt.Sprintf("   Providers: %d\n", info.Providers)
	content += fmt.Sprintf("   Wordlist: %d paths\n", info.WordlistSize)
	content += fmt.Sprintf("%s Stages: %d", IconStage, info.TotalStages)

	infoPanel.Println(content)

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
}

// StageStarted abre un spinner para la etapa
func (p *PTermPresenter) StageStarted(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.track(stage).Status = StatusRunning
	p.stages[stage].StartTime = time.Now()

	spinner, _ := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷").
		WithRemoveWhenDone(false).
		Start(fmt.Sprintf("%s...", stageLabel(stage)))

	p.spinners[stage] = spinner
}

// StageFinished cierra el spinner con el resultado de la etapa
func (p *PTermPresenter) StageFinished(stage string, elapsed time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp := p.track(stage)
	sp.Duration = elapsed

	msg := fmt.Sprintf("%s (%s)", stageLabel(stage), formatDuration(elapsed))
	if err != nil {
		sp.Status = StatusError
		sp.Detail = err.Error()
		msg += ": " + err.Error()
	} else {
		sp.Status = StatusSuccess
		if stage == "dir_brute" && p.bruteTotal > 0 {
			msg += fmt.Sprintf(" %d/%d paths, %d found", p.bruteDone, p.bruteTotal, len(p.bruteFound))
		}
	}

	spinner, ok := p.spinners[stage]
	if !ok {
		sp.Status.Style().Println(fmt.Sprintf("  %s %s", sp.Status.Symbol(), msg))
		return
	}
	delete(p.spinners, stage)
	if err != nil {
		spinner.Fail(msg)
		return
	}
	spinner.Success(msg)
}

// StageSkipped registra una etapa que no se ejecutó
func (p *PTermPresenter) StageSkipped(stage string, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp := p.track(stage)
	sp.Status = StatusSkipped
	sp.Detail = reason

	StatusSkipped.Style().Println(fmt.Sprintf("  %s %s skipped: %s", StatusSkipped.Symbol(), stageLabel(stage), reason))
}

// Progress actualiza el spinner del brute force
func (p *PTermPresenter) Progress(event ports.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsFound() {
		p.bruteFound = append(p.bruteFound, event.Path)
		if spinner, ok := p.spinners["dir_brute"]; ok {
			spinner.UpdateText(fmt.Sprintf("Found %s [%s]", event.Path, event.Status))
		}
		return
	}

	p.bruteDone = event.Current
	p.bruteTotal = event.Total
	if spinner, ok := p.spinners["dir_brute"]; ok {
		spinner.UpdateText(fmt.Sprintf("%s... %d/%d (%d found)", stageLabel("dir_brute"), event.Current, event.Total, len(p.bruteFound)))
	}
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Warning.Println(msg)
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Error.Println(msg)
}

// Finish finaliza la presentación con estadísticas finales
func (p *PTermPresenter) Finish(stats ScanStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinners()

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
	pterm.Println()

	header := pterm.DefaultHeader.WithTextStyle(pterm.NewStyle(pterm.FgBlack))
	if stats.Errors > 0 {
		header = header.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow))
	} else {
		header = header.WithBackgroundStyle(pterm.NewStyle(pterm.BgGreen))
	}
	header.Println("Scan Completed")
	pterm.Println()

	statsPanel := pterm.DefaultBox.
		WithTitle("Scan Statistics").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgGreen))

	content := fmt.Sprintf("%s Total Duration: %s\n", IconTime, pterm.Green(formatDuration(stats.TotalDuration)))
	content += fmt.Sprintf("%s Open Ports: %s\n", IconPorts, StyleSuccess.Sprint(fmt.Sprintf("%d", stats.OpenPorts)))
	content += fmt.Sprintf("   DNS Records: %d\n", stats.DNSRecords)
	content += fmt.Sprintf("   Subdomains: %d\n", stats.Subdomains)
	content += fmt.Sprintf("   Paths Found: %d\n", stats.PathsFound)
	if stats.Findings > 0 {
		content += fmt.Sprintf("%s Findings: %s\n", IconFinding, StyleWarning.Sprint(fmt.Sprintf("%d", stats.Findings)))
	}
	if stats.Errors > 0 {
		content += fmt.Sprintf("%s Errors: %s\n", StatusError.Symbol(), StyleError.Sprint(fmt.Sprintf("%d", stats.Errors)))
	}
	if stats.OutputFile != "" {
		content += fmt.Sprintf("%s Output: %s", IconFile, stats.OutputFile)
	}
	statsPanel.Println(content)

	if len(p.order) > 0 {
		pterm.Println()
		pterm.DefaultSection.WithLevel(2).Println("Stages")

		tableData := pterm.TableData{{"Stage", "Status", "Duration", "Detail"}}
		for _, name := range p.order {
			sp := p.stages[name]
			duration := ""
			if sp.Duration > 0 {
				duration = formatDuration(sp.Duration)
			}
			tableData = append(tableData, []string{
				stageLabel(name),
				sp.Status.Style().Sprint(sp.Status.Symbol() + " " + sp.Status.String()),
				duration,
				sp.Detail,
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	}

	pterm.Println()
}

// Close limpia recursos del presenter
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinners()
	return nil
}

// Stage retorna una copia del progreso de una etapa.
func (p *PTermPresenter) Stage(name string) (StageProgress, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.stages[name]
	if !ok {
		return StageProgress{}, false
	}
	return *sp, true
}

func (p *PTermPresenter) track(stage string) *StageProgress {
	sp, ok := p.stages[stage]
	if !ok {
		sp = &StageProgress{Name: stage, Status: StatusPending}
		p.stages[stage] = sp
		p.order = append(p.order, stage)
	}
	return sp
}

func (p *PTermPresenter) stopSpinners() {
	for name, spinner := range p.spinners {
		_ = spinner.Stop()
		delete(p.spinners, name)
	}
}
