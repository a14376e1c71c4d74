package router

import "fmt"

const weatherTemplate = "You are a friendly meteorologist. Tell me what the weather is like today in the region '%s'. " +
	"Give the approximate temperature, sky conditions, wind and humidity. " +
	"If exact data is unknown, give a reasoned estimate based on typical weather for this region and season. " +
	"Answer briefly in 1-2 sentences. Do not write 'I don't know'. " +
	"Do not use '*' or emoji."

const generalPreamble = "Answer briefly and helpfully. " +
	"If the question is complex, explain it simply. " +
	"Do not use markdown, asterisks or emoji unless asked."

func WeatherPrompt(place string) string {
	return fmt.Sprintf(weatherTemplate, place)
}

func GeneralPrompt(question string) string {
	return generalPreamble + "\n\nQuestion: " + question
}
