package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/dinehall/dinehall/internal/transport/http/order"
	producttransport "github.com/dinehall/dinehall/internal/transport/http/product"
	sessiontransport "github.com/dinehall/dinehall/internal/transport/http/session"
	tabletransport "github.com/dinehall/dinehall/internal/transport/http/table"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	sessiontransport.Module,
	ordertransport.Module,
	producttransport.Module,
	tabletransport.Module,
)
