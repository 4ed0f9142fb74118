// Package diag intercepts asynchronous failures that no component handled,
// classifies them, and records them without interrupting the user.
package diag

import (
	"net"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/bilingua-nb/bilingua-client/internal/storage"
	"github.com/bilingua-nb/bilingua-client/internal/ws"
)

// Kind is the failure class.
type Kind string

const (
	// KindConnectivity covers socket and transport failures; they are
	// expected under poor network conditions and the connection banner
	// already shows them, so they only log at warn.
	KindConnectivity Kind = "connectivity"
	// KindGeneric is everything else.
	KindGeneric Kind = "generic"
)

// Classify discriminates a failure by its type. The websocket layer tags its
// errors with *ws.ConnError and transport failures satisfy net.Error, so no
// message-string inspection is needed.
func Classify(err error) Kind {
	var connErr *ws.ConnError
	if errors.As(err, &connErr) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	return KindGeneric
}

// Recorder persists classified failures to the bounded ring buffer.
type Recorder struct {
	db *storage.ClientDB
}

// NewRecorder wires a Recorder over the client-local store. db may be nil,
// in which case failures are only logged.
func NewRecorder(db *storage.ClientDB) *Recorder {
	return &Recorder{db: db}
}

// Record classifies and logs a failure, then appends it to the ring buffer.
// It never surfaces anything to the user.
func (r *Recorder) Record(context string, err error) Kind {
	if err == nil {
		return KindGeneric
	}
	kind := Classify(err)
	switch kind {
	case KindConnectivity:
		jww.WARN.Printf("connectivity issue detected (%s): %v; real-time messaging may be affected", context, err)
	default:
		jww.WARN.Printf("unexpected application error (%s): %v", context, err)
	}

	if r.db == nil {
		return kind
	}
	d := storage.Diagnostic{
		Kind:    string(kind),
		Message: err.Error(),
		Detail:  context,
	}
	if dbErr := r.db.AppendDiagnostic(d); dbErr != nil {
		jww.ERROR.Printf("failed to store diagnostic: %v", dbErr)
	}
	return kind
}
