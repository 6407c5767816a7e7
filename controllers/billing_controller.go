package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SaintVisionAi/saintsal-chat-sub001/config"
	"github.com/SaintVisionAi/saintsal-chat-sub001/models"
	"github.com/SaintVisionAi/saintsal-chat-sub001/utils"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// GetProducts proxies the Stripe catalog: active products with their
// prices.
func GetProducts(c *fiber.Ctx) error {
	ctx, cancel := utils.GetLongContext()
	defer cancel()

	products, err := stripeClient.ListProducts(ctx)
	if err != nil {
		return providerError(c, err)
	}
	prices, err := stripeClient.ListPrices(ctx)
	if err != nil {
		return providerError(c, err)
	}

	pricesByProduct := map[string][]fiber.Map{}
	for _, p := range prices {
		entry := fiber.Map{
			"id":          p.ID,
			"unit_amount": p.UnitAmount,
			"currency":    p.Currency,
		}
		if p.Recurring != nil {
			entry["interval"] = p.Recurring.Interval
		}
		pricesByProduct[p.Product] = append(pricesByProduct[p.Product], entry)
	}

	out := []fiber.Map{}
	for _, prod := range products {
		out = append(out, fiber.Map{
			"id":          prod.ID,
			"name":        prod.Name,
			"description": prod.Description,
			"metadata":    prod.Metadata,
			"prices":      pricesByProduct[prod.ID],
		})
	}

	return c.JSON(fiber.Map{"products": out})
}

// SyncPlans pulls the Stripe catalog and upserts plan documents for
// products carrying a `plan` tier in their metadata.
func SyncPlans(c *fiber.Ctx) error {
	adminID := c.Locals("user_id").(string)

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	products, err := stripeClient.ListProducts(ctx)
	if err != nil {
		return providerError(c, err)
	}
	prices, err := stripeClient.ListPrices(ctx)
	if err != nil {
		return providerError(c, err)
	}

	priceByProduct := map[string]*models.Plan{}
	for i := range prices {
		p := prices[i]
		plan := &models.Plan{
			StripePriceID: p.ID,
			Amount:        p.UnitAmount,
			Currency:      p.Currency,
		}
		if p.Recurring != nil {
			plan.Interval = p.Recurring.Interval
		}
		priceByProduct[p.Product] = plan
	}

	collection := config.GetCollection("plans")
	synced := 0
	now := time.Now()
	for _, prod := range products {
		tier := prod.Metadata["plan"]
		if !models.ValidPlan(tier) {
			continue
		}

		doc := bson.M{
			"tier":              tier,
			"name":              prod.Name,
			"description":       prod.Description,
			"stripe_product_id": prod.ID,
			"is_active":         prod.Active,
			"updated_at":        now,
		}
		if price, ok := priceByProduct[prod.ID]; ok {
			doc["stripe_price_id"] = price.StripePriceID
			doc["amount"] = price.Amount
			doc["currency"] = price.Currency
			doc["interval"] = price.Interval
		}

		opts := options.Update().SetUpsert(true)
		_, err := collection.UpdateOne(ctx,
			bson.M{"stripe_product_id": prod.ID},
			bson.M{
				"$set":         doc,
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
			},
			opts,
		)
		if err != nil {
			config.GetLogger().Error("Plan upsert failed",
				zap.String("product", prod.ID),
				zap.Error(err))
			continue
		}
		synced++
	}

	utils.LogAudit(adminID, "Synced billing plans", fmt.Sprintf("%d plans", synced))

	return c.JSON(fiber.Map{"success": true, "synced": synced})
}

// CreateCheckout starts a Stripe Checkout session for the caller.
func CreateCheckout(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	userEmail := c.Locals("user_email").(string)

	var req struct {
		PriceID string `json:"priceId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if req.PriceID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "priceId is required"})
	}

	ctx, cancel := utils.GetLongContext()
	defer cancel()

	// Resolve the tier from the synced catalog so the webhook knows what
	// to grant.
	planTier := ""
	var plan models.Plan
	if err := config.GetCollection("plans").FindOne(ctx, bson.M{"stripe_price_id": req.PriceID}).Decode(&plan); err == nil {
		planTier = plan.Tier
	}

	appURL := config.GetAppURL()
	session, err := stripeClient.CreateCheckoutSession(ctx,
		req.PriceID, userEmail, userID, planTier,
		appURL+"/billing/success?session_id={CHECKOUT_SESSION_ID}",
		appURL+"/billing/cancelled",
	)
	if err != nil {
		return providerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"url":     session.URL,
	})
}

// StripeWebhook applies verified billing events. Signature failures are
// 400s; the user's plan only ever changes on a verified
// checkout.session.completed.
func StripeWebhook(c *fiber.Ctx) error {
	event, err := stripeClient.VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		config.GetLogger().Warn("Stripe webhook rejected", zap.Error(err))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(fiber.Map{"received": true})
	}

	userID, _ := event.Data.Object["client_reference_id"].(string)
	planTier := ""
	if metadata, ok := event.Data.Object["metadata"].(map[string]interface{}); ok {
		planTier, _ = metadata["plan"].(string)
	}

	if userID == "" || !models.ValidPlan(planTier) {
		config.GetLogger().Warn("Checkout completed without usable reference",
			zap.String("event", event.ID))
		return c.JSON(fiber.Map{"received": true})
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(fiber.Map{"received": true})
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	_, err = config.GetCollection("users").UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"plan": planTier, "updated_at": time.Now()}},
	)
	if err != nil {
		config.GetLogger().Error("Failed to apply plan from webhook",
			zap.String("user_id", userID),
			zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to apply plan"})
	}

	utils.LogAudit("stripe", "Applied plan from checkout", userID+" -> "+planTier)

	return c.JSON(fiber.Map{"received": true})
}
