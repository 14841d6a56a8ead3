package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// onShowParams opens the decoding parameter dialog. Changes apply to all
// subsequent translations and are persisted with the settings.
func (a *Application) onShowParams() {
	params := a.manager.Params()

	maxTokensEntry := widget.NewEntry()
	maxTokensEntry.SetText(strconv.Itoa(params.MaxTokens))

	temperatureEntry := widget.NewEntry()
	temperatureEntry.SetText(strconv.FormatFloat(params.Temperature, 'f', -1, 64))

	content := container.NewVBox(
		widget.NewLabel("Max tokens:"),
		maxTokensEntry,
		widget.NewLabel("Temperature:"),
		temperatureEntry,
	)

	d := dialog.NewCustomConfirm("Generation Settings", "Apply", "Cancel", content, func(apply bool) {
		if !apply {
			return
		}
		maxTokens, temperature, err := parseParamsInput(maxTokensEntry.Text, temperatureEntry.Text)
		if err != nil {
			a.showError(err)
			return
		}

		params := a.manager.Params()
		params.MaxTokens = maxTokens
		params.Temperature = temperature
		a.manager.UpdateParams(params)

		a.settings.MaxTokens = maxTokens
		a.settings.Temperature = temperature
		a.saveSettings()
		a.updateStatus(fmt.Sprintf("Generation settings: %d tokens, temperature %g", maxTokens, temperature))
	}, a.window)
	d.Resize(fyne.NewSize(320, 220))
	d.Show()
}

// parseParamsInput validates the dialog fields.
func parseParamsInput(maxTokensText, temperatureText string) (int, float64, error) {
	maxTokens, err := strconv.Atoi(maxTokensText)
	if err != nil || maxTokens <= 0 {
		return 0, 0, fmt.Errorf("max tokens must be a positive number")
	}

	temperature, err := strconv.ParseFloat(temperatureText, 64)
	if err != nil || temperature < 0 || temperature > 2 {
		return 0, 0, fmt.Errorf("temperature must be between 0 and 2")
	}

	return maxTokens, temperature, nil
}
