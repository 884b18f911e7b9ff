package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/heartscript/storefront/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserDocument struct {
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone"`
	Address   string    `bson:"address"`
	Pincode   string    `bson:"pincode"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
}

type ProductDocument struct {
	ProductID  uint      `bson:"product_id"`
	Name       string    `bson:"name"`
	Price      int       `bson:"price"`
	ImageURL1  string    `bson:"image_url1"`
	ImageURL2  string    `bson:"image_url2"`
	ImageURL3  string    `bson:"image_url3"`
	CategoryID uint      `bson:"category_id"`
	CreatedAt  time.Time `bson:"created_at"`
}

type OrderDocument struct {
	OrderID      uint      `bson:"order_id"`
	CustomerName string    `bson:"customer_name"`
	Items        string    `bson:"items"`
	TotalAmount  string    `bson:"total_amount"`
	DeliveryType string    `bson:"delivery_type"`
	Status       string    `bson:"status"`
	DateOrdered  time.Time `bson:"date_ordered"`
}

func NewUserDocument(u *models.User) UserDocument {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return UserDocument{
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Pincode:   u.Pincode,
		Role:      u.Role,
		CreatedAt: created.UTC(),
	}
}

func NewProductDocument(p *models.Product) ProductDocument {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return ProductDocument{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		ImageURL1:  p.ImageURL,
		ImageURL2:  p.ImageURL2,
		ImageURL3:  p.ImageURL3,
		CategoryID: p.CategoryID,
		CreatedAt:  created.UTC(),
	}
}

func NewOrderDocument(o *models.Order) OrderDocument {
	return OrderDocument{
		OrderID:      o.ID,
		CustomerName: o.Name,
		Items:        o.Items,
		TotalAmount:  o.Total,
		DeliveryType: o.DeliveryMode,
		Status:       o.Status,
		DateOrdered:  o.DateOrdered.UTC(),
	}
}

// MongoMirror keeps users, products and orders collections in a document
// database. Users are keyed by email, orders by order_id, products by name.
type MongoMirror struct {
	users    *mongo.Collection
	products *mongo.Collection
	orders   *mongo.Collection
}

func NewMongoMirror(db *mongo.Database) *MongoMirror {
	return &MongoMirror{
		users:    db.Collection("users"),
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
	}
}

// EnsureIndexes creates the lookup indexes used by the mirror's filters.
func (m *MongoMirror) EnsureIndexes(ctx context.Context) error {
	if _, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo mirror: users index: %w", err)
	}
	if _, err := m.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongo mirror: orders index: %w", err)
	}
	if _, err := m.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongo mirror: products index: %w", err)
	}
	return nil
}

func (m *MongoMirror) UpsertUser(ctx context.Context, user *models.User) error {
	doc := NewUserDocument(user)
	_, err := m.users.UpdateOne(ctx,
		bson.M{"email": doc.Email},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo mirror: upsert user %s: %w", user.Email, err)
	}
	return nil
}

func (m *MongoMirror) InsertProduct(ctx context.Context, product *models.Product) error {
	if _, err := m.products.InsertOne(ctx, NewProductDocument(product)); err != nil {
		return fmt.Errorf("mongo mirror: insert product %d: %w", product.ID, err)
	}
	return nil
}

func (m *MongoMirror) DeleteProduct(ctx context.Context, name string) error {
	if _, err := m.products.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("mongo mirror: delete product %q: %w", name, err)
	}
	return nil
}

func (m *MongoMirror) InsertOrder(ctx context.Context, order *models.Order) error {
	if _, err := m.orders.InsertOne(ctx, NewOrderDocument(order)); err != nil {
		return fmt.Errorf("mongo mirror: insert order %d: %w", order.ID, err)
	}
	return nil
}

func (m *MongoMirror) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	_, err := m.orders.UpdateOne(ctx, bson.M{"order_id": orderID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("mongo mirror: update order %d: %w", orderID, err)
	}
	return nil
}

func (m *MongoMirror) DeleteOrder(ctx context.Context, orderID uint) error {
	if _, err := m.orders.DeleteOne(ctx, bson.M{"order_id": orderID}); err != nil {
		return fmt.Errorf("mongo mirror: delete order %d: %w", orderID, err)
	}
	return nil
}
