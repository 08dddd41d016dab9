//go:generate mockgen -source=../cart_repository.go  -destination=./mock_cart_repository.go  -package=mocks
//go:generate mockgen -source=../order_repository.go -destination=./mock_order_repository.go -package=mocks
//go:generate mockgen -source=../order_cache.go      -destination=./mock_order_cache.go      -package=mocks
//go:generate mockgen -source=../event_publisher.go  -destination=./mock_event_publisher.go  -package=mocks
//go:generate mockgen -source=../validator.go        -destination=./mock_validator.go        -package=mocks
//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks
//go:generate mockgen -source=../message_consumer.go -destination=./mock_message_consumer.go -package=mocks
//go:generate mockgen -source=../mirror_store.go     -destination=./mock_mirror_store.go     -package=mocks
//go:generate mockgen -source=../cart_backend.go     -destination=./mock_cart_backend.go     -package=mocks
//go:generate mockgen -source=../usecases.go         -destination=./mock_usecases.go         -package=mocks
//go:generate mockgen -source=../token_verifier.go   -destination=./mock_token_verifier.go   -package=mocks
//go:generate mockgen -source=../key_value_store.go  -destination=./mock_key_value_store.go  -package=mocks

package mocks
