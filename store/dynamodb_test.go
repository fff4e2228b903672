package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	todo "github.com/sicko7947/todo-go"
)

// mockDynamoDBClient implements DynamoDBClient interface for testing
type mockDynamoDBClient struct {
	putItemFunc    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	getItemFunc    func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	queryFunc      func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	updateItemFunc func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	deleteItemFunc func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

func (m *mockDynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.putItemFunc != nil {
		return m.putItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamoDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDynamoDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockDynamoDBClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if m.updateItemFunc != nil {
		return m.updateItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamoDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteItemFunc != nil {
		return m.deleteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

// mockTableClient implements DynamoDBTableClient interface for testing
type mockTableClient struct {
	describeErr  error
	createCalled bool
	createInput  *dynamodb.CreateTableInput
	createErr    error
}

func (m *mockTableClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableStatus: types.TableStatusActive},
	}, nil
}

func (m *mockTableClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.createCalled = true
	m.createInput = params
	return &dynamodb.CreateTableOutput{}, m.createErr
}

func storedAttributes(id, title, quantity, createdAt string, updatedAt *string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		AttrPK:         &types.AttributeValueMemberS{Value: todoItemPK(id)},
		AttrSK:         &types.AttributeValueMemberS{Value: todoItemSK()},
		AttrEntityType: &types.AttributeValueMemberS{Value: EntityTypeTodoItem},
		"id":           &types.AttributeValueMemberS{Value: id},
		"title":        &types.AttributeValueMemberS{Value: title},
		"quantity":     &types.AttributeValueMemberN{Value: quantity},
		"created_at":   &types.AttributeValueMemberS{Value: createdAt},
		"updated_at":   &types.AttributeValueMemberNULL{Value: true},
	}
	if updatedAt != nil {
		item["updated_at"] = &types.AttributeValueMemberS{Value: *updatedAt}
	}
	return item
}

func TestNewDynamoDBStore(t *testing.T) {
	client := &mockDynamoDBClient{}
	store := NewDynamoDBStore(client, "test-table")

	if store == nil {
		t.Fatal("NewDynamoDBStore() returned nil")
	}

	// Verify it implements the interface
	var _ todo.TodoStore = store
}

func TestDynamoDBStore_Create(t *testing.T) {
	var capturedInput *dynamodb.PutItemInput

	client := &mockDynamoDBClient{
		putItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			capturedInput = params
			return &dynamodb.PutItemOutput{}, nil
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	item := newTestItem("item-1", "milk", 2, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := store.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if capturedInput == nil {
		t.Fatal("PutItem was not called")
	}

	if *capturedInput.TableName != "test-table" {
		t.Errorf("TableName = %s, want test-table", *capturedInput.TableName)
	}

	if capturedInput.ConditionExpression == nil || *capturedInput.ConditionExpression != "attribute_not_exists(PK)" {
		t.Errorf("ConditionExpression = %v, want attribute_not_exists(PK)", capturedInput.ConditionExpression)
	}

	checks := map[string]string{
		AttrPK:         todoItemPK("item-1"),
		AttrSK:         todoItemSK(),
		AttrEntityType: EntityTypeTodoItem,
		AttrGSI1PK:     todoItemGSI1PK(),
		AttrGSI1SK:     todoItemGSI1SK(item.CreatedAt, "item-1"),
		"id":           "item-1",
		"title":        "milk",
		"created_at":   item.CreatedAt,
	}
	for attr, want := range checks {
		av, ok := capturedInput.Item[attr]
		if !ok {
			t.Errorf("%s not set", attr)
			continue
		}
		got := av.(*types.AttributeValueMemberS).Value
		if got != want {
			t.Errorf("%s = %s, want %s", attr, got, want)
		}
	}

	quantity := capturedInput.Item["quantity"].(*types.AttributeValueMemberN).Value
	if quantity != "2" {
		t.Errorf("quantity = %s, want 2", quantity)
	}

	if _, ok := capturedInput.Item["updated_at"].(*types.AttributeValueMemberNULL); !ok {
		t.Errorf("updated_at = %T, want NULL", capturedInput.Item["updated_at"])
	}
}

func TestDynamoDBStore_Create_Error(t *testing.T) {
	client := &mockDynamoDBClient{
		putItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	err := store.Create(context.Background(), newTestItem("item-1", "milk", 2, time.Now()))
	if err == nil {
		t.Fatal("Create() should have failed")
	}
	if todo.IsNotFound(err) {
		t.Error("Create() error should not be a not-found error")
	}
}

func TestDynamoDBStore_Get(t *testing.T) {
	var capturedInput *dynamodb.GetItemInput

	client := &mockDynamoDBClient{
		getItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			capturedInput = params
			return &dynamodb.GetItemOutput{
				Item: storedAttributes("item-1", "milk", "2", "2025-03-01T12:00:00.000000000Z", nil),
			}, nil
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	item, err := store.Get(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	pk := capturedInput.Key[AttrPK].(*types.AttributeValueMemberS).Value
	if pk != "ITEM#item-1" {
		t.Errorf("PK = %s, want ITEM#item-1", pk)
	}

	if item.ID != "item-1" || item.Title != "milk" || item.Quantity != 2 {
		t.Errorf("Get() = %+v", item)
	}
	if item.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v, want nil", *item.UpdatedAt)
	}
}

func TestDynamoDBStore_Get_NotFound(t *testing.T) {
	client := &mockDynamoDBClient{}

	store := NewDynamoDBStore(client, "test-table")
	_, err := store.Get(context.Background(), "missing")
	if !todo.IsNotFound(err) {
		t.Errorf("Get() error = %v, want not found", err)
	}
}

func TestDynamoDBStore_List_Paginates(t *testing.T) {
	calls := 0

	client := &mockDynamoDBClient{
		queryFunc: func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			calls++
			if *params.IndexName != IndexListIndex {
				t.Errorf("IndexName = %s, want %s", *params.IndexName, IndexListIndex)
			}
			if calls == 1 {
				return &dynamodb.QueryOutput{
					Items: []map[string]types.AttributeValue{
						storedAttributes("a", "first", "1", "2025-03-01T12:00:00.000000000Z", nil),
					},
					LastEvaluatedKey: itemKey("a"),
				}, nil
			}
			if params.ExclusiveStartKey == nil {
				t.Error("second page requested without ExclusiveStartKey")
			}
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{
					storedAttributes("b", "second", "2", "2025-03-01T12:00:01.000000000Z", todo.ToPtr("2025-03-01T12:00:02.000000000Z")),
				},
			}, nil
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	if calls != 2 {
		t.Errorf("Query called %d times, want 2", calls)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("List() = %v, want [a b]", itemIDs(items))
	}
	if items[1].UpdatedAt == nil {
		t.Error("second item should carry updated_at")
	}
}

func TestDynamoDBStore_List_Empty(t *testing.T) {
	store := NewDynamoDBStore(&mockDynamoDBClient{}, "test-table")
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", items)
	}
}

func TestDynamoDBStore_Update(t *testing.T) {
	var capturedInput *dynamodb.UpdateItemInput
	stamp := "2025-03-01T12:05:00.000000000Z"

	client := &mockDynamoDBClient{
		updateItemFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			capturedInput = params
			return &dynamodb.UpdateItemOutput{
				Attributes: storedAttributes("item-1", "milk", "5", "2025-03-01T12:00:00.000000000Z", &stamp),
			}, nil
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	item, err := store.Update(context.Background(), "item-1", todo.ItemInput{Title: "milk", Quantity: 5}, stamp)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if *capturedInput.ConditionExpression != "attribute_exists(PK)" {
		t.Errorf("ConditionExpression = %s, want attribute_exists(PK)", *capturedInput.ConditionExpression)
	}
	if capturedInput.ReturnValues != types.ReturnValueAllNew {
		t.Errorf("ReturnValues = %s, want ALL_NEW", capturedInput.ReturnValues)
	}
	if v := capturedInput.ExpressionAttributeValues[":quantity"].(*types.AttributeValueMemberN).Value; v != "5" {
		t.Errorf(":quantity = %s, want 5", v)
	}

	if item.Quantity != 5 || item.UpdatedAt == nil || *item.UpdatedAt != stamp {
		t.Errorf("Update() = %+v", item)
	}
}

func TestDynamoDBStore_Update_NotFound(t *testing.T) {
	client := &mockDynamoDBClient{
		updateItemFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{Message: todo.ToPtr("The conditional request failed")}
		},
	}

	store := NewDynamoDBStore(client, "test-table")
	_, err := store.Update(context.Background(), "missing", todo.ItemInput{Title: "x"}, "2025-03-01T12:05:00.000000000Z")
	if !todo.IsNotFound(err) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestDynamoDBStore_Delete(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantErr      bool
		wantNotFound bool
	}{
		{name: "deleted"},
		{
			name:         "missing item",
			err:          &types.ConditionalCheckFailedException{},
			wantErr:      true,
			wantNotFound: true,
		},
		{
			name:    "storage failure",
			err:     errors.New("connection reset"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockDynamoDBClient{
				deleteItemFunc: func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
					if *params.ConditionExpression != "attribute_exists(PK)" {
						t.Errorf("ConditionExpression = %s", *params.ConditionExpression)
					}
					return &dynamodb.DeleteItemOutput{}, tt.err
				},
			}

			err := NewDynamoDBStore(client, "test-table").Delete(context.Background(), "item-1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Delete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if todo.IsNotFound(err) != tt.wantNotFound {
				t.Errorf("IsNotFound(%v) = %v, want %v", err, todo.IsNotFound(err), tt.wantNotFound)
			}
		})
	}
}

func TestEnsureDynamoDBTable_Exists(t *testing.T) {
	client := &mockTableClient{}

	if err := EnsureDynamoDBTable(context.Background(), client, "todo_items", 0); err != nil {
		t.Fatalf("EnsureDynamoDBTable() failed: %v", err)
	}
	if client.createCalled {
		t.Error("CreateTable should not be called for an existing table")
	}
}

func TestEnsureDynamoDBTable_Creates(t *testing.T) {
	client := &mockTableClient{
		describeErr: &types.ResourceNotFoundException{},
	}

	if err := EnsureDynamoDBTable(context.Background(), client, "todo_items", 0); err != nil {
		t.Fatalf("EnsureDynamoDBTable() failed: %v", err)
	}
	if !client.createCalled {
		t.Fatal("CreateTable was not called")
	}
	if *client.createInput.TableName != "todo_items" {
		t.Errorf("TableName = %s, want todo_items", *client.createInput.TableName)
	}
	if len(client.createInput.GlobalSecondaryIndexes) != 1 || *client.createInput.GlobalSecondaryIndexes[0].IndexName != IndexListIndex {
		t.Error("list index not requested")
	}
}

func TestEnsureDynamoDBTable_DescribeError(t *testing.T) {
	client := &mockTableClient{
		describeErr: errors.New("access denied"),
	}

	if err := EnsureDynamoDBTable(context.Background(), client, "todo_items", 0); err == nil {
		t.Fatal("EnsureDynamoDBTable() should have failed")
	}
	if client.createCalled {
		t.Error("CreateTable should not be called after an unexpected describe error")
	}
}
