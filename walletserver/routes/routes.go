package routes

import (
	"github.com/gorilla/mux"

	"keypom/walletserver/controllers"
	"keypom/walletserver/middleware"
)

// Register wires the Keypom HTTP API onto r, the same flat handler-per-route
// style the teacher used for its wallet endpoints.
func Register(r *mux.Router, kc *controllers.KeypomController) {
	r.Use(middleware.Logger)
	r.HandleFunc("/api/drop/create", kc.CreateDrop).Methods("POST")
	r.HandleFunc("/api/drop/add_keys", kc.AddKeys).Methods("POST")
	r.HandleFunc("/api/drop/delete_keys", kc.DeleteKeys).Methods("POST")
	r.HandleFunc("/api/claim", kc.Claim).Methods("POST")
	r.HandleFunc("/api/key/nft_transfer", kc.NFTTransfer).Methods("POST")
	r.HandleFunc("/api/drop", kc.DropInformation).Methods("GET")
	r.HandleFunc("/api/key", kc.KeyInformation).Methods("GET")
	r.HandleFunc("/api/funder/balance", kc.FunderBalance).Methods("GET")
}
