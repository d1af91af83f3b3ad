package client

import "peoplework/internal/domain"

// GuardState es el resultado de evaluar una navegación protegida.
type GuardState int

const (
	// StateLoading indica que la sesión aún se está restaurando y la
	// decisión debe posponerse.
	StateLoading GuardState = iota
	// StateUnauthenticated exige redirigir a login conservando el destino.
	StateUnauthenticated
	// StateForbidden indica sesión válida pero rol insuficiente.
	StateForbidden
	// StateAllowed permite el acceso.
	StateAllowed
)

func (s GuardState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateAllowed:
		return "allowed"
	}
	return "unknown"
}

// Decision acompaña el estado con el destino a recordar cuando hay que
// pasar por login primero.
type Decision struct {
	State GuardState
	// ReturnTo es la ruta original, para retomarla después del login.
	ReturnTo string
}

// Guard decide el acceso a rutas protegidas en función de la sesión.
type Guard struct {
	session *Session
}

func NewGuard(session *Session) *Guard {
	return &Guard{session: session}
}

// Check evalúa el acceso a path para los roles requeridos. Mientras la
// sesión se restaura siempre responde StateLoading, nunca un rechazo.
func (g *Guard) Check(path string, roles ...domain.Role) Decision {
	if g.session.Loading() {
		return Decision{State: StateLoading}
	}
	if !g.session.IsAuthenticated() {
		return Decision{State: StateUnauthenticated, ReturnTo: path}
	}
	if !g.session.HasPermission(roles...) {
		return Decision{State: StateForbidden}
	}
	return Decision{State: StateAllowed}
}
