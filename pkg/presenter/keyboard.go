package presenter

// Menu labels. Inbound text is matched against these exactly.
const (
	LabelWeather   = "Weather"
	LabelConverter = "Converter"
	LabelModels    = "AI Models"
	LabelEnterCity = "Enter city"
	LabelLocateMe  = "Locate me"
	LabelBack      = "Back"
	LabelCancel    = "Cancel"
	LabelSendLoc   = "Send my location"
)

type Button struct {
	Text            string
	RequestLocation bool
}

// Keyboard is a transport-neutral reply keyboard. A keyboard with Remove set
// asks the transport to hide whatever keyboard is currently shown.
type Keyboard struct {
	Rows    [][]Button
	Remove  bool
	OneTime bool
}

func IsCancel(text string) bool {
	return text == LabelBack || text == LabelCancel
}

func MainMenu() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: LabelWeather}, {Text: LabelConverter}},
		{{Text: LabelModels}},
	}}
}

func WeatherMenu() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: LabelEnterCity}, {Text: LabelLocateMe}},
		{{Text: LabelBack}},
	}}
}

func LocationMenu() *Keyboard {
	return &Keyboard{
		Rows: [][]Button{
			{{Text: LabelSendLoc, RequestLocation: true}},
			{{Text: LabelCancel}},
		},
		OneTime: true,
	}
}

// ModelsMenu lists one model per row followed by Back.
func ModelsMenu(labels []string) *Keyboard {
	rows := make([][]Button, 0, len(labels)+1)
	for _, l := range labels {
		rows = append(rows, []Button{{Text: l}})
	}
	rows = append(rows, []Button{{Text: LabelBack}})
	return &Keyboard{Rows: rows}
}

func RemoveKeyboard() *Keyboard {
	return &Keyboard{Remove: true}
}
