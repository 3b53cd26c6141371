package outbox

import "github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"

// DBExecutor переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
