package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"keypom/walletserver/config"
	"keypom/walletserver/controllers"
	"keypom/walletserver/routes"
	"keypom/walletserver/services"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.Fatal(err)
	}
	svc := services.NewService(config.AppConfig.ContractAccount)
	ctrl := controllers.NewKeypomController(svc)

	r := mux.NewRouter()
	routes.Register(r, ctrl)

	logrus.Infof("keypom http api listening on %s", config.AppConfig.Port)
	if err := http.ListenAndServe(":"+config.AppConfig.Port, r); err != nil {
		logrus.Fatal(err)
	}
}
