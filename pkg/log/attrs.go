package log

import "log/slog"

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func CallID[T ~string](id T) slog.Attr {
	return slog.String("call_id", string(id))
}

func State[T ~string](state T) slog.Attr {
	return slog.String("state", string(state))
}

func Capture[T ~string](key T) slog.Attr {
	return slog.String("capture", string(key))
}

func Endpoint(endpoint string) slog.Attr {
	return slog.String("endpoint", endpoint)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
