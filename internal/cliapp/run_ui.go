package cliapp

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"depscope/internal/core/ports"
)

func runUI(service ports.DependencyService) error {
	m := initialModel(service)
	p := tea.NewProgram(m, tea.WithAltScreen())

	ctx := context.Background()
	watch := service.WatchService()

	if err := watch.Subscribe(ctx, func(result ports.RefreshResult) {
		p.Send(refreshMsg{result: result})
	}); err != nil {
		return err
	}
	if err := watch.SubscribeInstalls(ctx, func(event ports.InstallEvent) {
		p.Send(installMsg{event: event})
	}); err != nil {
		return err
	}

	go func() {
		result, err := watch.Current(ctx)
		if err != nil {
			p.Send(refreshFailedMsg{err: err})
			return
		}
		p.Send(refreshMsg{result: result})
	}()

	_, err := p.Run()
	return err
}
