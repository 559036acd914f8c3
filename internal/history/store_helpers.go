package history

import (
	"database/sql"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		sha         sql.NullString
		transcriber sql.NullString
		model       sql.NullString
		language    sql.NullString
		status      string
		sentiment   sql.NullString
		polarity    sql.NullFloat64
		tempo       sql.NullFloat64
		duration    sql.NullFloat64
		outputPath  sql.NullString
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.AudioPath,
		&sha,
		&transcriber,
		&model,
		&language,
		&status,
		&sentiment,
		&polarity,
		&tempo,
		&duration,
		&run.ConceptsGenerated,
		&outputPath,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, err
	}
	run.AudioSHA256 = sha.String
	run.Transcriber = transcriber.String
	run.Model = model.String
	run.Language = language.String
	run.Status = Status(status)
	run.Sentiment = sentiment.String
	run.Polarity = polarity.Float64
	run.TempoBPM = tempo.Float64
	run.DurationSeconds = duration.Float64
	run.OutputPath = outputPath.String
	run.ErrorMessage = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
