package main

import (
	"os"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
	"github.com/joho/godotenv"

	"iptrade/contract"
	"iptrade/identity"
)

var logger = flogging.MustGetLogger("iptrade")

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file loaded: %v", err)
	}

	var validator identity.Validator
	if baseURL := os.Getenv("IDENTITY_BASE_URL"); baseURL != "" {
		validator = identity.NewClient(baseURL)
		logger.Infof("identity collaborator enabled at %s", baseURL)
	} else {
		logger.Info("identity collaborator disabled")
	}

	cc, err := contractapi.NewChaincode(contract.NewRegistryContract(validator))
	if err != nil {
		panic("Error creating RegistryContract chaincode: " + err.Error())
	}
	if err := cc.Start(); err != nil {
		panic("Error starting chaincode: " + err.Error())
	}
}
