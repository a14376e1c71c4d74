package presenter

import (
	"errors"
	"fmt"

	"github.com/tinyland-inc/pocketbot/pkg/providers"
)

const (
	MsgMainMenu         = "Main menu:"
	MsgWeatherHow       = "How do you want to get the weather?"
	MsgAskCity          = "Write a city or region:"
	MsgAskLocation      = "Send your location:"
	MsgChooseModel      = "Choose an AI model:"
	MsgConverterHelp    = "Send a file:\n• DOCX → PDF: send .docx\n• PDF → DOCX: send .pdf"
	MsgEmptyText        = "Could not read the text."
	MsgTooShort         = "The name is too short."
	MsgUnsupported      = "Unsupported format. Only .docx or .pdf"
	MsgConversionFailed = "Conversion failed."
	MsgToPDFReady       = "DOCX → PDF ready!"
	MsgToDOCXReady      = "PDF → DOCX ready!"
	MsgServiceDown      = "Could not reach the AI service. Try again later."

	WorkingThinking   = "Thinking..."
	WorkingConverting = "Converting..."
	WorkingLocating   = "Resolving your city from coordinates..."
)

func Greeting(name string) string {
	if name == "" {
		name = "friend"
	}
	return fmt.Sprintf("Glad to see you, %s!\nHow can I help you?", name)
}

func ModelSelected(label string) string {
	return fmt.Sprintf("Model selected: %s\nWhat would you like to know?", label)
}

func WorkingWeather(city string) string {
	return fmt.Sprintf("Requesting weather for %s...", city)
}

// GatewayErrorText renders a generation failure for the user.
func GatewayErrorText(err error) string {
	var gerr *providers.GatewayError
	if errors.As(err, &gerr) && gerr.Kind == providers.KindStatus {
		return fmt.Sprintf("Error: %d", gerr.Code)
	}
	return MsgServiceDown
}
