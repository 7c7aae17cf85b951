// Reader is a client facility to read the output of a http reporter.

package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/TEENet-io/liquid-wallet/lqman/utxo"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
	}
}

func (hr *HttpReader) url(route string) string {
	return "http://" + hr.serverIP + ":" + hr.serverPort + route
}

// Decode a JSON answer into out, or turn {"error": ...} into an error.
func decodeAnswer(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return fmt.Errorf("reporter: %s: %s", resp.Status, e.Error)
	}
	return json.Unmarshal(body, out)
}

func (hr *HttpReader) get(route string, out interface{}) error {
	resp, err := http.Get(hr.url(route))
	if err != nil {
		return err
	}
	return decodeAnswer(resp, out)
}

func (hr *HttpReader) post(route string, in interface{}, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := http.Post(hr.url(route), "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return decodeAnswer(resp, out)
}

func (hr *HttpReader) GetHello() (string, error) {
	var ans struct {
		Message string `json:"message"`
	}
	if err := hr.get(ROUTE_HELLO, &ans); err != nil {
		return "", err
	}
	return ans.Message, nil
}

func (hr *HttpReader) GetUtxos(address string) ([]utxo.UnspentOutput, error) {
	var ans struct {
		Data []utxo.UnspentOutput `json:"data"`
	}
	if err := hr.get(ROUTE_UTXOS+"?address="+url.QueryEscape(address), &ans); err != nil {
		return nil, err
	}
	return ans.Data, nil
}

func (hr *HttpReader) GetBalances(address string) (map[string]uint64, error) {
	var ans struct {
		Data map[string]uint64 `json:"data"`
	}
	if err := hr.get(ROUTE_BALANCES+"?address="+url.QueryEscape(address), &ans); err != nil {
		return nil, err
	}
	return ans.Data, nil
}

type psetAnswer struct {
	Pset string `json:"pset"`
}

func (hr *HttpReader) CreateTx() (string, error) {
	var ans psetAnswer
	if err := hr.post(ROUTE_TX_CREATE, struct{}{}, &ans); err != nil {
		return "", err
	}
	return ans.Pset, nil
}

func (hr *HttpReader) UpdateTx(req UpdateRequest) (string, error) {
	var ans psetAnswer
	if err := hr.post(ROUTE_TX_UPDATE, req, &ans); err != nil {
		return "", err
	}
	return ans.Pset, nil
}

func (hr *HttpReader) SignTx(pset string) (string, error) {
	var ans psetAnswer
	if err := hr.post(ROUTE_TX_SIGN, PsetRequest{Pset: pset}, &ans); err != nil {
		return "", err
	}
	return ans.Pset, nil
}

func (hr *HttpReader) ToHex(pset string) (string, error) {
	var ans struct {
		Hex string `json:"hex"`
	}
	if err := hr.post(ROUTE_TX_HEX, PsetRequest{Pset: pset}, &ans); err != nil {
		return "", err
	}
	return ans.Hex, nil
}
