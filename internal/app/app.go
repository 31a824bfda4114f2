package app

import (
	"go.uber.org/fx"

	"github.com/dinehall/dinehall/internal/cache"
	"github.com/dinehall/dinehall/internal/config"
	"github.com/dinehall/dinehall/internal/database"
	"github.com/dinehall/dinehall/internal/logger"
	"github.com/dinehall/dinehall/internal/messaging"
	"github.com/dinehall/dinehall/internal/observability"
	repositoryorder "github.com/dinehall/dinehall/internal/repository/order"
	repositoryproduct "github.com/dinehall/dinehall/internal/repository/product"
	repositorysession "github.com/dinehall/dinehall/internal/repository/session"
	repositorytable "github.com/dinehall/dinehall/internal/repository/table"
	httpserver "github.com/dinehall/dinehall/internal/server/http"
	serviceorder "github.com/dinehall/dinehall/internal/service/order"
	serviceproduct "github.com/dinehall/dinehall/internal/service/product"
	servicesession "github.com/dinehall/dinehall/internal/service/session"
	transporthttp "github.com/dinehall/dinehall/internal/transport/http"
	"github.com/dinehall/dinehall/internal/worker"
	workerledger "github.com/dinehall/dinehall/internal/worker/ledger"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorysession.Module,
	repositoryorder.Module,
	repositoryproduct.Module,
	repositorytable.Module,
	servicesession.Module,
	serviceorder.Module,
	serviceproduct.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background ledger auditing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerledger.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
