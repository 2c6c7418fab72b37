package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"roomsched/db"
	"roomsched/globals"
	"roomsched/middleware"
	"roomsched/models"
	"roomsched/rdx"
	"roomsched/utils"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	policy RolePolicy
}

func NewHandler(policy RolePolicy) *Handler {
	return &Handler{policy: policy}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "User already exists")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		UserID:   utils.GenerateRandomDigitString(16),
		Email:    input.Email,
		Password: string(hash),
		Role:     h.policy(input.Email),
	}
	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"userid": user.UserID, "role": user.Role})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stored models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&stored); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// Role is re-derived at login so a policy change takes effect without
	// touching stored users.
	role := h.policy(stored.Email)
	tokenString, err := generateToken(stored, role)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := rdx.RdxSet("session:"+stored.UserID, tokenString); err != nil {
		log.Printf("Redis session storage failed: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":  tokenString,
		"userid": stored.UserID,
		"role":   role,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	if userID != "" {
		if err := rdx.RdxDel("session:" + userID); err != nil {
			log.Printf("Redis session delete failed: %v", err)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func generateToken(user models.User, role string) (string, error) {
	claims := middleware.Claims{
		Email:  user.Email,
		UserID: user.UserID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}
