package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventease/model"
)

// MongoStore keeps every entity in its own collection of a single database.
type MongoStore struct {
	client        *mongo.Client
	users         *mongo.Collection
	events        *mongo.Collection
	registrations *mongo.Collection
	notifications *mongo.Collection
	subscribers   *mongo.Collection
}

func DBInit(ctx context.Context, connString, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %v", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db is not available: %v", err)
	}

	s := newMongoStore(client, client.Database(dbName))
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func newMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:        client,
		users:         db.Collection("users"),
		events:        db.Collection("events"),
		registrations: db.Collection("registrations"),
		notifications: db.Collection("notifications"),
		subscribers:   db.Collection("subscribers"),
	}
}

// ensureIndexes creates the unique indexes that back ErrDuplicateEmail and
// ErrAlreadyRegistered.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true)}},
		{s.subscribers, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true)}},
		{s.registrations, mongo.IndexModel{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true)}},
		{s.registrations, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{s.notifications, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (T, error) {
	var item T
	err := coll.FindOne(ctx, filter).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("server side problem occured while reading %s: %w", coll.Name(), err)
	}
	return item, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("server side problem occured while reading %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	var items []T
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("server side problem occured while decoding %s: %w", coll.Name(), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

func exactFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

// ---------- Users ----------

func (s *MongoStore) CreateUser(ctx context.Context, user *model.UserData) error {
	user.Id = NewId()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now()

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (model.UserData, error) {
	return findOne[model.UserData](ctx, s.users, bson.M{"_id": id})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (model.UserData, error) {
	return findOne[model.UserData](ctx, s.users, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]model.UserData, error) {
	return findAll[model.UserData](ctx, s.users, bson.M{}, newestFirst())
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, id, role string) (model.UserData, error) {
	var user model.UserData
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("update user role: %w", err)
	}
	return user, nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return deleteOne(ctx, s.users, bson.M{"_id": id})
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter any) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Events ----------

func (s *MongoStore) CreateEvent(ctx context.Context, event *model.Event) error {
	event.Id = NewId()
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt
	if event.Tags == nil {
		event.Tags = []string{}
	}

	if _, err := s.events.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *MongoStore) GetEvent(ctx context.Context, id string) (model.Event, error) {
	return findOne[model.Event](ctx, s.events, bson.M{"_id": id})
}

func (s *MongoStore) ListEvents(ctx context.Context, query model.EventQuery) ([]model.Event, int, error) {
	filter := bson.M{}
	if query.Category != "" {
		filter["category"] = exactFold(query.Category)
	}
	if query.Type != "" {
		filter["type"] = exactFold(query.Type)
	}
	if q := strings.TrimSpace(query.Search); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"category": pattern},
			bson.M{"location": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}

	total, err := s.events.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	opts := newestFirst()
	if query.Limit > 0 {
		skip, ok := pageOffset(query.Page, query.Limit)
		if !ok || int64(skip) >= total {
			return []model.Event{}, int(total), nil
		}
		opts.SetSkip(int64(skip)).SetLimit(int64(query.Limit))
	}

	events, err := findAll[model.Event](ctx, s.events, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return events, int(total), nil
}

// UpdateEvent overwrites the editable fields only; attendees is owned by the
// registration path. The capacity guard is part of the filter so a booking
// that lands after the caller's read still counts.
func (s *MongoStore) UpdateEvent(ctx context.Context, event model.Event) error {
	if event.Tags == nil {
		event.Tags = []string{}
	}
	filter := bson.M{"_id": event.Id, "attendees": bson.M{"$lte": event.Capacity}}
	res, err := s.events.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":       event.Title,
		"description": event.Description,
		"category":    event.Category,
		"type":        event.Type,
		"date":        event.Date,
		"time":        event.Time,
		"location":    event.Location,
		"venue":       event.Venue,
		"price":       event.Price,
		"capacity":    event.Capacity,
		"tags":        event.Tags,
		"organizer":   event.Organizer,
		"rating":      event.Rating,
		"reviews":     event.Reviews,
		"image":       event.Image,
		"updated_at":  now(),
	}})
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, getErr := s.GetEvent(ctx, event.Id); getErr == nil {
			return ErrCapacityTooLow
		}
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteEvent(ctx context.Context, id string) error {
	return deleteOne(ctx, s.events, bson.M{"_id": id})
}

// ---------- Registrations ----------

// CreateRegistration reserves tickets with a conditional increment before
// inserting, so a registration document only exists once its seats are held.
// A duplicate insert releases the reservation again. When the reservation
// fails, an existing registration of the user still wins over sold out.
func (s *MongoStore) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	reg.Id = NewId()
	reg.CreatedAt = now()
	if reg.Status == "" {
		reg.Status = model.RegistrationConfirmed
	}

	res, err := s.events.UpdateOne(ctx,
		bson.M{
			"_id": reg.EventId,
			"$expr": bson.M{"$lte": bson.A{
				bson.M{"$add": bson.A{"$attendees", reg.NumberOfTickets}},
				"$capacity",
			}},
		},
		bson.M{"$inc": bson.M{"attendees": reg.NumberOfTickets}},
	)
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.reservationFailure(ctx, reg)
	}

	if _, err := s.registrations.InsertOne(ctx, reg); err != nil {
		if relErr := s.releaseTickets(ctx, reg.EventId, reg.NumberOfTickets); relErr != nil {
			return fmt.Errorf("release tickets after failed insert: %w", relErr)
		}
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *MongoStore) reservationFailure(ctx context.Context, reg *model.Registration) error {
	_, err := s.FindRegistration(ctx, reg.UserId, reg.EventId)
	if err == nil {
		return ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.GetEvent(ctx, reg.EventId); err != nil {
		return err
	}
	return ErrSoldOut
}

func (s *MongoStore) releaseTickets(ctx context.Context, eventId string, tickets int) error {
	_, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventId},
		bson.M{"$inc": bson.M{"attendees": -tickets}})
	return err
}

func (s *MongoStore) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	return findOne[model.Registration](ctx, s.registrations, bson.M{"_id": id})
}

func (s *MongoStore) FindRegistration(ctx context.Context, userId, eventId string) (model.Registration, error) {
	return findOne[model.Registration](ctx, s.registrations, bson.M{"user_id": userId, "event_id": eventId})
}

func (s *MongoStore) ListRegistrationsByUser(ctx context.Context, userId string) ([]model.Registration, error) {
	return findAll[model.Registration](ctx, s.registrations, bson.M{"user_id": userId}, newestFirst())
}

func (s *MongoStore) ListRegistrationsByEvent(ctx context.Context, eventId string) ([]model.Registration, error) {
	return findAll[model.Registration](ctx, s.registrations, bson.M{"event_id": eventId},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (s *MongoStore) DeleteRegistration(ctx context.Context, id string) error {
	var reg model.Registration
	err := s.registrations.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	// the event may already be gone; nothing to release then
	if err := s.releaseTickets(ctx, reg.EventId, reg.NumberOfTickets); err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	return nil
}

// ---------- Notifications ----------

func (s *MongoStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.Id = NewId()
	n.CreatedAt = now()
	if _, err := s.notifications.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoStore) ListNotifications(ctx context.Context, userId string) ([]model.Notification, error) {
	return findAll[model.Notification](ctx, s.notifications, bson.M{"user_id": userId}, newestFirst())
}

func (s *MongoStore) MarkNotificationRead(ctx context.Context, userId, id string) error {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userId},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkAllNotificationsRead(ctx context.Context, userId string) (int64, error) {
	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"user_id": userId, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) DeleteNotification(ctx context.Context, userId, id string) error {
	return deleteOne(ctx, s.notifications, bson.M{"_id": id, "user_id": userId})
}

// ---------- Subscribers ----------

func (s *MongoStore) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	sub.Id = NewId()
	sub.Email = strings.ToLower(sub.Email)
	sub.SubscribedAt = now()
	if _, err := s.subscribers.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (s *MongoStore) GetSubscriber(ctx context.Context, id string) (model.Subscriber, error) {
	return findOne[model.Subscriber](ctx, s.subscribers, bson.M{"_id": id})
}

func (s *MongoStore) GetSubscriberByEmail(ctx context.Context, email string) (model.Subscriber, error) {
	return findOne[model.Subscriber](ctx, s.subscribers, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoStore) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	return findAll[model.Subscriber](ctx, s.subscribers, bson.M{},
		options.Find().SetSort(bson.D{{Key: "subscribed_at", Value: -1}}))
}

func (s *MongoStore) UpdateSubscriber(ctx context.Context, sub model.Subscriber) error {
	res, err := s.subscribers.UpdateOne(ctx, bson.M{"_id": sub.Id}, bson.M{"$set": bson.M{
		"is_active":   sub.IsActive,
		"preferences": sub.Preferences,
	}})
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteSubscriber(ctx context.Context, id string) error {
	return deleteOne(ctx, s.subscribers, bson.M{"_id": id})
}

// ---------- Stats ----------

func (s *MongoStore) Stats(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	counts := []struct {
		coll *mongo.Collection
		dst  *int64
	}{
		{s.users, &stats.Users},
		{s.events, &stats.Events},
		{s.registrations, &stats.Registrations},
		{s.subscribers, &stats.Subscribers},
	}
	for _, c := range counts {
		n, err := c.coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return stats, fmt.Errorf("count %s: %w", c.coll.Name(), err)
		}
		*c.dst = n
	}

	cur, err := s.registrations.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "tickets", Value: bson.D{{Key: "$sum", Value: "$number_of_tickets"}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total_price"}}},
		}}},
	})
	if err != nil {
		return stats, fmt.Errorf("aggregate registrations: %w", err)
	}
	defer cur.Close(ctx)

	var totals []struct {
		Tickets int64   `bson:"tickets"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &totals); err != nil {
		return stats, fmt.Errorf("decode registration totals: %w", err)
	}
	if len(totals) == 1 {
		stats.TicketsSold = totals[0].Tickets
		stats.Revenue = totals[0].Revenue
	}
	return stats, nil
}
