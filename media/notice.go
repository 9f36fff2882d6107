package media

import "go.uber.org/zap"

type NoticeKind string

const (
	NoticeSuccess          NoticeKind = "success"
	NoticeError            NoticeKind = "error"
	NoticePermissionDenied NoticeKind = "permission_denied"
)

// Notice is a user-visible outcome of a command.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(n Notice) {
	fields := []zap.Field{zap.String("kind", string(n.Kind)), zap.String("title", n.Title)}
	if n.Kind == NoticeSuccess {
		l.Logger.Info(n.Message, fields...)
		return
	}
	l.Logger.Warn(n.Message, fields...)
}
