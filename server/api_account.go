package server

import (
	"cirello.io/goherokuname"
	"encoding/json"
	"github.com/dgrijalva/jwt-go"
	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"io"
	"net/http"
	"standoff/model"
	"time"
)

//accountNamespace keeps fingerprint derived ids stable when there is no database
var accountNamespace = uuid.NewV5(uuid.NamespaceURL, "standoff/accounts")

type AuthenticateFingerprintReq struct {
	Fingerprint string `json:"fingerprint"`
}

type SessionResp struct {
	Token string `json:"token"`
	Expiry int64 `json:"expiry"`
	UserID string `json:"user_id"`
	Username string `json:"username"`
}

//AuthenticateFingerprint returns the account bound to fingerprint, creating it on first sight
func AuthenticateFingerprint(fingerprint string, conn *mgo.Session, database string) (*model.Account, error) {

	if fingerprint == "" {
		return nil, errors.New("fingerprint couldn't be empty")
	}

	if conn == nil {
		id := uuid.NewV5(accountNamespace, fingerprint)
		return &model.Account{
			Fingerprint: fingerprint,
			Username: "guest-" + id.String()[:8],
			CreatedAt: time.Now().Unix(),
		}, nil
	}

	cConn := conn.Copy()
	defer cConn.Close()
	c := cConn.DB(database).C(model.Account{}.GetCollectionName())

	account := &model.Account{}
	err := c.Find(bson.M{"fingerprint": fingerprint}).One(account)
	if err == nil {
		return account, nil
	}
	if err != mgo.ErrNotFound {
		return nil, errors.WithStack(err)
	}

	username := goherokuname.HaikunateCustom("-", 4, "DfWx9873214560jzrl")
	//Generate user name until find one that doesn't exists in db
	for {
		count, err := c.Find(bson.M{"username": username}).Count()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if count == 0 {
			break
		}
		username = goherokuname.HaikunateCustom("-", 4, "DfWx9873214560jzrl")
	}

	account = &model.Account{
		Id: bson.NewObjectId(),
		Fingerprint: fingerprint,
		Username: username,
		CreatedAt: time.Now().Unix(),
	}
	if err := c.Insert(account); err != nil {
		return nil, errors.WithStack(err)
	}
	return account, nil

}

func accountID(account *model.Account) string {
	if account.Id.Valid() {
		return account.Id.Hex()
	}
	return uuid.NewV5(accountNamespace, account.Fingerprint).String()
}

//AuthenticateFingerprintHandler serves POST /v1/account/fingerprint
func (s *Server) AuthenticateFingerprintHandler(w http.ResponseWriter, r *http.Request) {

	req := &AuthenticateFingerprintReq{}
	body := io.LimitReader(r.Body, s.config.MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, &Error{Code: ERROR_BAD_INPUT, Message: "invalid body"})
		return
	}

	account, err := AuthenticateFingerprint(req.Fingerprint, s.db, s.config.DBConfig.Database)
	if err != nil {
		s.logger.Warnw("Fingerprint authentication failed", "error", err)
		writeJSON(w, http.StatusBadRequest, &Error{Code: ERROR_BAD_INPUT, Message: errors.Cause(err).Error()})
		return
	}

	userID := accountID(account)
	token, exp := generateToken(userID, account.Username, s.config)

	writeJSON(w, http.StatusOK, &SessionResp{
		Token: token,
		Expiry: exp,
		UserID: userID,
		Username: account.Username,
	})

}

func generateToken(userID, username string, config *Config) (string, int64) {
	exp := time.Now().UTC().Add(time.Duration(config.AuthConfig.TokenExpireTime) * time.Second).Unix()
	return generateTokenWithExpiry(userID, username, exp, config)
}

func generateTokenWithExpiry(userID, username string, exp int64, config *Config) (string, int64) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": userID,
		"exp": exp,
		"usn": username,
	})
	signedToken, _ := token.SignedString([]byte(config.AuthConfig.JWTSecret))
	return signedToken, exp
}
