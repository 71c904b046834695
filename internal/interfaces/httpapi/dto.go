package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironlabs/squares/internal/usecase"
)

type createBoardRequest struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	GameID         string `json:"gameId"`
	Sport          string `json:"sport" validate:"omitempty,oneof=nfl cfb"`
	PricePerSquare int    `json:"pricePerSquare" validate:"min=0"`
}

type claimSquareRequest struct {
	Row         int    `json:"row" validate:"min=0,max=9"`
	Col         int    `json:"col" validate:"min=0,max=9"`
	DisplayName string `json:"displayName"`
}

type squarePositionRequest struct {
	Row int `json:"row" validate:"min=0,max=9"`
	Col int `json:"col" validate:"min=0,max=9"`
}

type setPaidRequest struct {
	Row  int  `json:"row" validate:"min=0,max=9"`
	Col  int  `json:"col" validate:"min=0,max=9"`
	Paid bool `json:"paid"`
}

type setOwnerRequest struct {
	Row   int    `json:"row" validate:"min=0,max=9"`
	Col   int    `json:"col" validate:"min=0,max=9"`
	Owner string `json:"owner"`
}

type setDisplayNameRequest struct {
	Row         int    `json:"row" validate:"min=0,max=9"`
	Col         int    `json:"col" validate:"min=0,max=9"`
	DisplayName string `json:"displayName" validate:"required"`
}

type shareLinkResponse struct {
	BoardID string `json:"boardId"`
	Token   string `json:"token"`
}

func decodeBody(r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
