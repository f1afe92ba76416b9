package main

import (
	"context"

	"adagency/internal/api"

	"github.com/sirupsen/logrus"
)

// @title Рекламное агентство API
// @version 1.0
// @description Каталог рекламных услуг, заказы с расчётом стоимости, оплаты и персональные скидки клиентов
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logrus.Info("App start")
	if err := api.StartServer(context.Background()); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("App terminated")
}
