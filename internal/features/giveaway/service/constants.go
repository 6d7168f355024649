package service

import "time"

const (
	DefaultTickInterval  = time.Minute // Период проверки истекших розыгрышей
	DefaultMaxConcurrent = 5           // Максимальное количество одновременно закрываемых розыгрышей
	tickLockKey          = "giveaway:scheduler:tick"
)
