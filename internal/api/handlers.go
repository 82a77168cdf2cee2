package api

import (
	"context"
	"net/http"

	"github.com/safar/storefront-api/internal/store"
	"go.uber.org/zap"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.db)
	if err != nil {
		h.fail(w, r, err, "List users failed")
		return
	}

	respondList(w, len(users), users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w, r)
		return
	}

	user, err := store.GetUser(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, err, "Get user failed")
		return
	}

	respondJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: user})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req store.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := store.CreateUser(r.Context(), h.db, req)
	if err != nil {
		h.fail(w, r, err, "Create user failed")
		return
	}

	respondCreated(w, "User created successfully", user)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.db)
	if err != nil {
		h.fail(w, r, err, "List products failed")
		return
	}

	respondList(w, len(products), products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w, r)
		return
	}

	product, err := store.GetProduct(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, err, "Get product failed")
		return
	}

	respondJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: product})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req store.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := store.CreateProduct(r.Context(), h.db, req)
	if err != nil {
		h.fail(w, r, err, "Create product failed")
		return
	}

	respondCreated(w, "Product created successfully", product)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := store.ListOrders(r.Context(), h.db)
	if err != nil {
		h.fail(w, r, err, "List orders failed")
		return
	}

	respondList(w, len(orders), orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		notFound(w, r)
		return
	}

	order, err := store.GetOrder(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, err, "Get order failed")
		return
	}

	respondJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: order})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req store.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := store.CreateOrder(r.Context(), h.db, req)
	if err != nil {
		h.fail(w, r, err, "Create order failed")
		return
	}

	h.metrics.OrdersCreatedTotal.Inc()
	if skipped := len(req.Items) - len(order.Items); skipped > 0 {
		h.metrics.OrderItemsSkippedTotal.Add(float64(skipped))
		h.logger.Warn("order items skipped for unknown products",
			zap.Int64("order_id", order.ID),
			zap.Int("skipped", skipped),
		)
	}

	// The order is committed; a broker failure must not change the response.
	if err := h.publisher.PublishOrderCreated(context.WithoutCancel(r.Context()), order); err != nil {
		h.logger.Warn("publish order created failed", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	respondCreated(w, "Order created successfully", order)
}
